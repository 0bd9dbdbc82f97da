// Package mongo implements the store over MongoDB. Each record type lives
// in its own collection; the attempts counter uses a single-document atomic
// update so no multi-document transaction is needed.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/eventia/stepup/internal/stepup/store"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	collSessions    = "verification_sessions"
	collLockouts    = "lockouts"
	collDevices     = "trusted_devices"
	collReceipts    = "authorized_actions"
	collEnrollments = "totp_enrollments"
	collAuditEvents = "audit_events"
)

// Config holds connection settings for the document store.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	RetryAttempts  int
	RetryInterval  time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = 100
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 5 * time.Second
	}
	return c
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
}

// NewStore connects to MongoDB, retrying a few times so the service survives
// the store coming up slightly after it in orchestrated deployments.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	var lastErr error
	for range cfg.RetryAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.URI).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return &Store{
					client: client,
					db:     client.Database(cfg.Database),
					cfg:    cfg,
				}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(errors.New("mongo: failed to connect"), lastErr)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Sessions() store.Sessions { return &sessionsRepo{c: s.db.Collection(collSessions)} }

func (s *Store) Lockouts() store.Lockouts { return &lockoutsRepo{c: s.db.Collection(collLockouts)} }

func (s *Store) Devices() store.Devices { return &devicesRepo{c: s.db.Collection(collDevices)} }

func (s *Store) Receipts() store.Receipts { return &receiptsRepo{c: s.db.Collection(collReceipts)} }

func (s *Store) Enrollments() store.Enrollments {
	return &enrollmentsRepo{c: s.db.Collection(collEnrollments)}
}

func (s *Store) AuditEvents() store.AuditEvents {
	return &auditEventsRepo{c: s.db.Collection(collAuditEvents)}
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
