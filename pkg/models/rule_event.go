package models

import "time"

// RuleChangeEvent is published to the broker whenever the rule store
// changes, so dashboard consumers can refresh without polling.
type RuleChangeEvent struct {
	ID          string                 `json:"id"`
	EventType   string                 `json:"event_type"`
	RuleID      int64                  `json:"rule_id,omitempty"`
	CountryCode string                 `json:"country_code,omitempty"`
	Action      string                 `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	ChangedBy   string                 `json:"changed_by,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeRuleChanged        = "compliance_rule_changed"
	EventTypeSubmissionPromoted = "compliance_submission_promoted"
	EventTypeCountryAdded       = "country_added"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionImport  = "import"
	ActionPromote = "promote"
)
