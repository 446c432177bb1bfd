package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
)

const backendMongo = "mongo"

// Default MongoDB names.
const (
	DefaultDatabase   = "netforce"
	DefaultCollection = "snapshots"
)

// MongoConfig selects a MongoDB deployment and collection.
type MongoConfig struct {
	URI        string `toml:"uri" json:"-"`
	Database   string `toml:"database" json:"database"`
	Collection string `toml:"collection" json:"collection"`
}

// MongoStore keeps snapshots as documents keyed by "_id" = snapshot ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects and pings the server. Empty Database and Collection
// fall back to DefaultDatabase and DefaultCollection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is empty")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get loads one snapshot document.
func (s *MongoStore) Get(ctx context.Context, id string) (snap *graph.Snapshot, err error) {
	defer func(start time.Time) { observe(ctx, backendMongo, "get", start, err) }(time.Now())

	if err := errors.ValidateSnapshotID(id); err != nil {
		return nil, err
	}
	var doc graph.Snapshot
	err = s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot %s: %w", id, err)
	}
	return &doc, nil
}

// Put upserts snap.
func (s *MongoStore) Put(ctx context.Context, snap *graph.Snapshot) (err error) {
	defer func(start time.Time) { observe(ctx, backendMongo, "put", start, err) }(time.Now())

	if err := checkPut(snap); err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Delete removes one snapshot document.
func (s *MongoStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(ctx, backendMongo, "delete", start, err) }(time.Now())

	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}
	if _, err = s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

// List projects every document to a summary on the server side.
func (s *MongoStore) List(ctx context.Context) (out []graph.Summary, err error) {
	defer func(start time.Time) { observe(ctx, backendMongo, "list", start, err) }(time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "created_at", Value: 1},
			{Key: "nodes", Value: bson.M{"$size": bson.M{"$ifNull": bson.A{"$nodes", bson.A{}}}}},
			{Key: "edges", Value: bson.M{"$size": bson.M{"$ifNull": bson.A{"$edgeStartPosition", bson.A{}}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out = []graph.Summary{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot summaries: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
