// Package mongo implements ports.Store on MongoDB. Identifiers are int64
// sequences kept in the counters collection so that the API exposes the same
// ids as the relational store. Transactions need a replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/adboard/board-api/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers          = "users"
	collectionAdvertisements = "advertisements"
	collectionComments       = "comments"
	collectionCounters       = "counters"
)

// Store implements ports.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	repos
}

// Config selects the deployment and the board database inside it.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connect and the initial ping. Zero means 10s.
	Timeout time.Duration
}

// Open connects with majority writes, pings the primary and returns a Store.
// Call EnsureIndexes before serving.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo store: database name is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo store: connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo store: ping primary of %q: %w", cfg.Database, err)
	}
	return New(client, client.Database(cfg.Database)), nil
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db, repos: repos{db: db}}
}

// WithinTx runs fn in a session transaction. Repository calls made with the
// ctx handed to fn join the transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s.repos)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique username index and the lookup indexes used
// by listing and cascading deletes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionAdvertisements: {
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
			{Keys: bson.D{{Key: "adv_group", Value: 1}}},
		},
		collectionComments: {
			{Keys: bson.D{{Key: "advertisement_id", Value: 1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
	}
	for coll, indexes := range plan {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

type repos struct {
	db *mongo.Database
}

func (r repos) Users() ports.UserRepository {
	return &UserRepository{db: r.db, col: r.db.Collection(collectionUsers)}
}

func (r repos) Advertisements() ports.AdvertisementRepository {
	return &AdvertisementRepository{db: r.db, col: r.db.Collection(collectionAdvertisements)}
}

func (r repos) Comments() ports.CommentRepository {
	return &CommentRepository{db: r.db, col: r.db.Collection(collectionComments)}
}

type counter struct {
	Seq int64 `bson:"seq"`
}

// nextID increments and returns the named sequence.
func nextID(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var c counter
	err := db.Collection(collectionCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return c.Seq, nil
}
