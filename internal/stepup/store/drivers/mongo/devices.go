package mongo

import (
	"context"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type deviceDoc struct {
	SubjectID string    `bson:"subject_id"`
	DeviceID  string    `bson:"device_id"`
	Name      string    `bson:"name,omitempty"`
	TrustedAt time.Time `bson:"trusted_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func fromDeviceDoc(d deviceDoc) domain.TrustedDevice {
	return domain.TrustedDevice{
		SubjectID: d.SubjectID,
		DeviceID:  d.DeviceID,
		Name:      d.Name,
		TrustedAt: d.TrustedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

type devicesRepo struct {
	c *mongo.Collection
}

func (r *devicesRepo) Upsert(ctx context.Context, d domain.TrustedDevice) error {
	doc := deviceDoc{
		SubjectID: d.SubjectID,
		DeviceID:  d.DeviceID,
		Name:      d.Name,
		TrustedAt: d.TrustedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
	}
	_, err := r.c.ReplaceOne(ctx,
		bson.M{"subject_id": d.SubjectID, "device_id": d.DeviceID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *devicesRepo) Get(ctx context.Context, subjectID, deviceID string) (domain.TrustedDevice, error) {
	var doc deviceDoc
	err := r.c.FindOne(ctx, bson.M{"subject_id": subjectID, "device_id": deviceID}).Decode(&doc)
	if err != nil {
		return domain.TrustedDevice{}, mapNotFound(err)
	}
	return fromDeviceDoc(doc), nil
}

func (r *devicesRepo) ListActive(ctx context.Context, subjectID string, now time.Time) ([]domain.TrustedDevice, error) {
	cursor, err := r.c.Find(ctx,
		bson.M{"subject_id": subjectID, "expires_at": bson.M{"$gt": now.UTC()}},
		options.Find().SetSort(bson.D{{Key: "trusted_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []deviceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	devices := make([]domain.TrustedDevice, 0, len(docs))
	for _, doc := range docs {
		devices = append(devices, fromDeviceDoc(doc))
	}
	return devices, nil
}

func (r *devicesRepo) Delete(ctx context.Context, subjectID, deviceID string) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"subject_id": subjectID, "device_id": deviceID})
	return err
}

func (r *devicesRepo) DeleteAll(ctx context.Context, subjectID string) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"subject_id": subjectID})
	return err
}

func (r *devicesRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	return err
}
