package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImportReport is the persisted record of one bulk import run.
type ImportReport struct {
	ID           string                 `bson:"_id" json:"id"`
	FileName     string                 `bson:"file_name" json:"file_name"`
	UploadedBy   string                 `bson:"uploaded_by" json:"uploaded_by"`
	SuccessCount int                    `bson:"success_count" json:"success_count"`
	ErrorCount   int                    `bson:"error_count" json:"error_count"`
	Errors       []ImportRowError       `bson:"errors,omitempty" json:"errors,omitempty"`
	Warnings     []NormalizationWarning `bson:"warnings,omitempty" json:"warnings,omitempty"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
}

type ReportRepository interface {
	SaveReport(ctx context.Context, report *ImportReport) error
	ListReports(ctx context.Context, limit int) ([]ImportReport, error)
	GetReport(ctx context.Context, id string) (*ImportReport, error)
}

type mongoReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) ReportRepository {
	return &mongoReportRepository{
		collection: db.Collection("import_reports"),
	}
}

func (r *mongoReportRepository) SaveReport(ctx context.Context, report *ImportReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save import report: %w", err)
	}

	return nil
}

func (r *mongoReportRepository) ListReports(ctx context.Context, limit int) ([]ImportReport, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list import reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []ImportReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode import reports: %w", err)
	}

	return reports, nil
}

func (r *mongoReportRepository) GetReport(ctx context.Context, id string) (*ImportReport, error) {
	filter := bson.M{"_id": id}

	var report ImportReport
	err := r.collection.FindOne(ctx, filter).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import report: %w", err)
	}

	return &report, nil
}
