package mongo

import (
	"context"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type auditEventDoc struct {
	ID        string         `bson:"_id"`
	SubjectID string         `bson:"subject_id"`
	EventType string         `bson:"event_type"`
	Severity  string         `bson:"severity"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	At        time.Time      `bson:"at"`
}

type auditEventsRepo struct {
	c *mongo.Collection
}

func (r *auditEventsRepo) Append(ctx context.Context, ev domain.AuditEvent) error {
	_, err := r.c.InsertOne(ctx, auditEventDoc{
		ID:        ev.ID,
		SubjectID: ev.SubjectID,
		EventType: ev.EventType,
		Severity:  ev.Severity,
		Metadata:  ev.Metadata,
		At:        ev.At.UTC(),
	})
	return err
}

func (r *auditEventsRepo) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	cursor, err := r.c.Find(ctx,
		bson.M{"subject_id": subjectID},
		options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []auditEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]domain.AuditEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, domain.AuditEvent{
			ID:        doc.ID,
			SubjectID: doc.SubjectID,
			EventType: doc.EventType,
			Severity:  doc.Severity,
			Metadata:  doc.Metadata,
			At:        doc.At,
		})
	}
	return events, nil
}
