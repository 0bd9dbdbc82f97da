package mongo

import (
	"context"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type receiptDoc struct {
	ID           string    `bson:"_id"`
	SubjectID    string    `bson:"subject_id"`
	ActionType   string    `bson:"action_type"`
	Amount       float64   `bson:"amount,omitempty"`
	Currency     string    `bson:"currency,omitempty"`
	AMR          string    `bson:"amr"`
	AuthorizedAt time.Time `bson:"authorized_at"`
	ExpiresAt    time.Time `bson:"expires_at"`
}

func fromReceiptDoc(d receiptDoc) domain.AuthorizedAction {
	return domain.AuthorizedAction{
		ID:           d.ID,
		SubjectID:    d.SubjectID,
		ActionType:   domain.ActionType(d.ActionType),
		Amount:       d.Amount,
		Currency:     d.Currency,
		AMR:          d.AMR,
		AuthorizedAt: d.AuthorizedAt,
		ExpiresAt:    d.ExpiresAt,
	}
}

type receiptsRepo struct {
	c *mongo.Collection
}

func (r *receiptsRepo) Create(ctx context.Context, a domain.AuthorizedAction) error {
	_, err := r.c.InsertOne(ctx, receiptDoc{
		ID:           a.ID,
		SubjectID:    a.SubjectID,
		ActionType:   string(a.ActionType),
		Amount:       a.Amount,
		Currency:     a.Currency,
		AMR:          a.AMR,
		AuthorizedAt: a.AuthorizedAt.UTC(),
		ExpiresAt:    a.ExpiresAt.UTC(),
	})
	return err
}

func (r *receiptsRepo) LatestValid(ctx context.Context, subjectID string, action domain.ActionType, now time.Time) (domain.AuthorizedAction, error) {
	var doc receiptDoc
	err := r.c.FindOne(ctx,
		bson.M{
			"subject_id":  subjectID,
			"action_type": string(action),
			"expires_at":  bson.M{"$gt": now.UTC()},
		},
		options.FindOne().SetSort(bson.D{{Key: "authorized_at", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		return domain.AuthorizedAction{}, mapNotFound(err)
	}
	return fromReceiptDoc(doc), nil
}

func (r *receiptsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	return err
}
