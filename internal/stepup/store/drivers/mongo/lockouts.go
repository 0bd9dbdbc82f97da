package mongo

import (
	"context"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type lockoutDoc struct {
	SubjectID   string    `bson:"_id"`
	SessionID   string    `bson:"session_id"`
	Reason      string    `bson:"reason"`
	LockedUntil time.Time `bson:"locked_until"`
	CreatedAt   time.Time `bson:"created_at"`
}

func fromLockoutDoc(d lockoutDoc) domain.LockoutRecord {
	return domain.LockoutRecord{
		SubjectID:   d.SubjectID,
		SessionID:   d.SessionID,
		Reason:      d.Reason,
		LockedUntil: d.LockedUntil,
		CreatedAt:   d.CreatedAt,
	}
}

type lockoutsRepo struct {
	c *mongo.Collection
}

// Upsert keys lockouts by subject: a subject has at most one lockout, and a
// new one replaces whatever remains of the previous window.
func (r *lockoutsRepo) Upsert(ctx context.Context, l domain.LockoutRecord) error {
	doc := lockoutDoc{
		SubjectID:   l.SubjectID,
		SessionID:   l.SessionID,
		Reason:      l.Reason,
		LockedUntil: l.LockedUntil.UTC(),
		CreatedAt:   l.CreatedAt.UTC(),
	}
	_, err := r.c.ReplaceOne(ctx,
		bson.M{"_id": l.SubjectID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *lockoutsRepo) ActiveBySubject(ctx context.Context, subjectID string, now time.Time) (domain.LockoutRecord, error) {
	var doc lockoutDoc
	err := r.c.FindOne(ctx, bson.M{
		"_id":          subjectID,
		"locked_until": bson.M{"$gt": now.UTC()},
	}).Decode(&doc)
	if err != nil {
		return domain.LockoutRecord{}, mapNotFound(err)
	}
	return fromLockoutDoc(doc), nil
}

func (r *lockoutsRepo) BySession(ctx context.Context, sessionID string) (domain.LockoutRecord, error) {
	var doc lockoutDoc
	if err := r.c.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc); err != nil {
		return domain.LockoutRecord{}, mapNotFound(err)
	}
	return fromLockoutDoc(doc), nil
}

func (r *lockoutsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"locked_until": bson.M{"$lte": now.UTC()}})
	return err
}
