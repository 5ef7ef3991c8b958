package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	AuditEntityRule       = "rule"
	AuditEntitySubmission = "submission"
	AuditEntityCountry    = "country"
)

type AuditLogEntry struct {
	ID           string      `json:"id"`
	RuleID       *int64      `json:"rule_id,omitempty"`
	EntityType   string      `json:"entity_type"`
	Action       string      `json:"action"`
	OldValue     interface{} `json:"old_value,omitempty"`
	NewValue     interface{} `json:"new_value,omitempty"`
	ChangedBy    string      `json:"changed_by"`
	ChangeReason string      `json:"change_reason,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

type AuditLogger struct {
	db *sql.DB
}

func NewAuditLogger(db *sql.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

func (a *AuditLogger) LogChange(ctx context.Context, entry AuditLogEntry) error {
	query := `
		INSERT INTO rule_audit_logs (id, rule_id, entity_type, action, old_value, new_value, changed_by, change_reason, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	id := uuid.New().String()
	if entry.ID != "" {
		id = entry.ID
	}

	oldValueJSON, _ := json.Marshal(entry.OldValue)
	newValueJSON, _ := json.Marshal(entry.NewValue)

	var changeReason *string
	if entry.ChangeReason != "" {
		changeReason = &entry.ChangeReason
	}

	timestamp := time.Now()
	if !entry.Timestamp.IsZero() {
		timestamp = entry.Timestamp
	}

	_, err := a.db.ExecContext(ctx, query,
		id, entry.RuleID, entry.EntityType, entry.Action,
		oldValueJSON, newValueJSON,
		entry.ChangedBy, changeReason, timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}

	return nil
}

// ListEntries returns recent audit entries, newest first. When ruleID is
// non-nil the listing is scoped to that rule.
func (a *AuditLogger) ListEntries(ctx context.Context, ruleID *int64, limit int) ([]AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, rule_id, entity_type, action, old_value, new_value, changed_by, change_reason, timestamp
		FROM rule_audit_logs
	`
	args := []interface{}{}
	if ruleID != nil {
		query += ` WHERE rule_id = $1`
		args = append(args, *ruleID)
	}
	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT %d`, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditLogEntry
	for rows.Next() {
		var (
			entry        AuditLogEntry
			oldValue     []byte
			newValue     []byte
			changeReason sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.RuleID, &entry.EntityType, &entry.Action,
			&oldValue, &newValue, &entry.ChangedBy, &changeReason, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if len(oldValue) > 0 {
			var v interface{}
			if json.Unmarshal(oldValue, &v) == nil {
				entry.OldValue = v
			}
		}
		if len(newValue) > 0 {
			var v interface{}
			if json.Unmarshal(newValue, &v) == nil {
				entry.NewValue = v
			}
		}
		if changeReason.Valid {
			entry.ChangeReason = changeReason.String
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
