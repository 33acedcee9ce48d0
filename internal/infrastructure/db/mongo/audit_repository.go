package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

const auditCollection = "visit_events"

// AuditRepository implements ports.VisitAuditor using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

// Record appends event to the visit_events collection.
func (r *AuditRepository) Record(ctx context.Context, event domain.VisitEvent) error {
	doc := bson.M{
		"type":        string(event.Type),
		"visit_id":    event.VisitID,
		"visitor_id":  event.VisitorID,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Resolution != "" {
		doc["resolution"] = event.Resolution
	}
	if event.DurationMinutes != nil {
		doc["duration_minutes"] = *event.DurationMinutes
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert visit event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes used by audit lookups.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "visit_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "visitor_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
