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

type enrollmentDoc struct {
	SubjectID   string     `bson:"_id"`
	Secret      string     `bson:"secret"`
	Account     string     `bson:"account"`
	CreatedAt   time.Time  `bson:"created_at"`
	ActivatedAt *time.Time `bson:"activated_at,omitempty"`
}

type enrollmentsRepo struct {
	c *mongo.Collection
}

func (r *enrollmentsRepo) Upsert(ctx context.Context, e domain.TOTPEnrollment) error {
	doc := enrollmentDoc{
		SubjectID:   e.SubjectID,
		Secret:      e.Secret,
		Account:     e.Account,
		CreatedAt:   e.CreatedAt.UTC(),
		ActivatedAt: e.ActivatedAt,
	}
	_, err := r.c.ReplaceOne(ctx,
		bson.M{"_id": e.SubjectID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *enrollmentsRepo) Get(ctx context.Context, subjectID string) (domain.TOTPEnrollment, error) {
	var doc enrollmentDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&doc); err != nil {
		return domain.TOTPEnrollment{}, mapNotFound(err)
	}
	return domain.TOTPEnrollment{
		SubjectID:   doc.SubjectID,
		Secret:      doc.Secret,
		Account:     doc.Account,
		CreatedAt:   doc.CreatedAt,
		ActivatedAt: doc.ActivatedAt,
	}, nil
}

func (r *enrollmentsRepo) Activate(ctx context.Context, subjectID string, at time.Time) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": subjectID},
		bson.M{"$set": bson.M{"activated_at": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *enrollmentsRepo) Delete(ctx context.Context, subjectID string) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": subjectID})
	return err
}
