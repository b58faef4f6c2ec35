package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghiac/ephdash/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBStore is a MongoDB implementation of EnvStore
// Envs live in one collection keyed by name; log lines in a second one
type MongoDBStore struct {
	client *mongo.Client
	envs   *mongo.Collection
	logs   *mongo.Collection
}

// MongoDBStoreConfig holds configuration for MongoDBStore
type MongoDBStoreConfig struct {
	URI        string // MongoDB connection URI (e.g., "mongodb://localhost:27017")
	Database   string // Database name (default: "ephdash")
	Collection string // Env collection name (default: "envs"); logs go to "<collection>_logs"
}

// DefaultMongoDBStoreConfig returns default configuration
func DefaultMongoDBStoreConfig() MongoDBStoreConfig {
	return MongoDBStoreConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "ephdash",
		Collection: "envs",
	}
}

type logDocument struct {
	Name      string    `bson:"name"`
	Seq       int64     `bson:"seq"`
	Line      string    `bson:"line"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoDBStore creates a new MongoDB env store
func NewMongoDBStore(config MongoDBStoreConfig) (*MongoDBStore, error) {
	defaults := DefaultMongoDBStoreConfig()
	if config.URI == "" {
		config.URI = defaults.URI
	}
	if config.Database == "" {
		config.Database = defaults.Database
	}
	if config.Collection == "" {
		config.Collection = defaults.Collection
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(config.Database)
	store := &MongoDBStore{
		client: client,
		envs:   database.Collection(config.Collection),
		logs:   database.Collection(config.Collection + "_logs"),
	}

	if err := store.initIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return store, nil
}

// initIndexes creates the necessary indexes
func (s *MongoDBStore) initIndexes(ctx context.Context) error {
	_, err := s.envs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expiration", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create expiration index: %w", err)
	}

	_, err = s.logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: 1},
			{Key: "seq", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create log index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *MongoDBStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Get retrieves an environment by name
func (s *MongoDBStore) Get(ctx context.Context, name string) (*model.Env, error) {
	var env model.Env
	err := s.envs.FindOne(ctx, bson.M{"_id": name}).Decode(&env)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query env: %w", err)
	}
	return &env, nil
}

// Put stores or updates an environment
func (s *MongoDBStore) Put(ctx context.Context, env *model.Env) error {
	if env == nil {
		return fmt.Errorf("env cannot be nil")
	}
	if env.Name == "" {
		return fmt.Errorf("env name cannot be empty")
	}

	env.UpdatedAt = time.Now()
	if env.CreatedAt.IsZero() {
		env.CreatedAt = env.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.envs.ReplaceOne(ctx, bson.M{"_id": env.Name}, env, opts); err != nil {
		return fmt.Errorf("failed to save env: %w", err)
	}
	return nil
}

// Delete removes an environment and its logs
func (s *MongoDBStore) Delete(ctx context.Context, name string) error {
	if _, err := s.logs.DeleteMany(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("failed to delete env logs: %w", err)
	}
	if _, err := s.envs.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("failed to delete env: %w", err)
	}
	return nil
}

// List returns all environments ordered by name
func (s *MongoDBStore) List(ctx context.Context) ([]*model.Env, error) {
	cursor, err := s.envs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query envs: %w", err)
	}
	defer cursor.Close(ctx)

	var envs []*model.Env
	if err := cursor.All(ctx, &envs); err != nil {
		return nil, fmt.Errorf("failed to decode envs: %w", err)
	}
	return envs, nil
}

// AppendLogs adds lines to an environment's log
// Sequence numbers continue from the highest stored one for the env
func (s *MongoDBStore) AppendLogs(ctx context.Context, name string, lines []string) error {
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}

	next, err := s.nextSeq(ctx, name)
	if err != nil {
		return err
	}

	split := splitLines(lines)
	if len(split) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(split))
	for i, line := range split {
		docs = append(docs, logDocument{Name: name, Seq: next + int64(i), Line: line, CreatedAt: now})
	}
	if _, err := s.logs.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert log lines: %w", err)
	}
	return nil
}

func (s *MongoDBStore) nextSeq(ctx context.Context, name string) (int64, error) {
	var last logDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	err := s.logs.FindOne(ctx, bson.M{"name": name}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query last log line: %w", err)
	}
	return last.Seq + 1, nil
}

// Logs returns the tail of an environment's log
func (s *MongoDBStore) Logs(ctx context.Context, name string, limit int) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.logs.Find(ctx, bson.M{"name": name}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []logDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}

	lines := make([]string, len(docs))
	for i, doc := range docs {
		lines[len(docs)-1-i] = doc.Line
	}
	return lines, nil
}
