package mongo

import (
	"context"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/internal/stepup/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type sessionDoc struct {
	ID          string    `bson:"_id"`
	SubjectID   string    `bson:"subject_id"`
	Method      string    `bson:"method"`
	CodeHash    string    `bson:"code_hash,omitempty"`
	Destination string    `bson:"destination,omitempty"`
	ActionType  string    `bson:"action_type,omitempty"`
	Amount      float64   `bson:"amount,omitempty"`
	Currency    string    `bson:"currency,omitempty"`
	Attempts    int       `bson:"attempts"`
	CreatedAt   time.Time `bson:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

func toSessionDoc(s domain.VerificationSession) sessionDoc {
	return sessionDoc{
		ID:          s.ID,
		SubjectID:   s.SubjectID,
		Method:      string(s.Method),
		CodeHash:    s.CodeHash,
		Destination: s.Destination,
		ActionType:  string(s.ActionType),
		Amount:      s.Amount,
		Currency:    s.Currency,
		Attempts:    s.Attempts,
		CreatedAt:   s.CreatedAt.UTC(),
		ExpiresAt:   s.ExpiresAt.UTC(),
	}
}

func fromSessionDoc(d sessionDoc) domain.VerificationSession {
	return domain.VerificationSession{
		ID:          d.ID,
		SubjectID:   d.SubjectID,
		Method:      domain.Method(d.Method),
		CodeHash:    d.CodeHash,
		Destination: d.Destination,
		ActionType:  domain.ActionType(d.ActionType),
		Amount:      d.Amount,
		Currency:    d.Currency,
		Attempts:    d.Attempts,
		CreatedAt:   d.CreatedAt,
		ExpiresAt:   d.ExpiresAt,
	}
}

type sessionsRepo struct {
	c *mongo.Collection
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.VerificationSession) error {
	_, err := r.c.InsertOne(ctx, toSessionDoc(s))
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (domain.VerificationSession, error) {
	var doc sessionDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return domain.VerificationSession{}, mapNotFound(err)
	}
	return fromSessionDoc(doc), nil
}

// IncrementAttempts relies on FindOneAndUpdate being atomic per document, so
// two concurrent wrong guesses can never be collapsed into one increment.
func (r *sessionsRepo) IncrementAttempts(ctx context.Context, id string) (domain.VerificationSession, error) {
	var doc sessionDoc
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return domain.VerificationSession{}, mapNotFound(err)
	}
	return fromSessionDoc(doc), nil
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	return err
}
