package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const countersCollection = "counters"

// MongoStore is the MongoDB backed Store.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

type mongoCollection struct {
	coll *mongo.Collection
}

// NewMongoStore connects to uri and pings the primary before returning.
// transactions enables multi-document transactions, which need a replica set.
func NewMongoStore(ctx context.Context, uri, dbName string, transactions bool) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:       client,
		db:           client.Database(dbName),
		transactions: transactions,
	}, nil
}

// Collection implements Store.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

// NextSequence implements Store with an upserted counter document.
func (s *MongoStore) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return counter.Seq, nil
}

// WithTransaction implements Store. Without transaction support fn runs directly.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}

// EnsureIndexes implements Store.
func (s *MongoStore) EnsureIndexes(ctx context.Context, unique map[string][][]string) error {
	for name, keySets := range unique {
		models := make([]mongo.IndexModel, 0, len(keySets))
		for _, keys := range keySets {
			doc := bson.D{}
			for _, k := range keys {
				doc = append(doc, bson.E{Key: k, Value: 1})
			}
			models = append(models, mongo.IndexModel{
				Keys:    doc,
				Options: options.Index().SetUnique(true).SetName("uniq_" + strings.Join(keys, "_")),
			})
		}
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Drop implements Store.
func (s *MongoStore) Drop(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	_, err := s.db.Collection(countersCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": names}})
	return err
}

// Health pings the primary.
func (s *MongoStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := map[string]string{"driver": "mongo", "database": s.db.Name()}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

const insertOrderField = "_inserted"

func (c *mongoCollection) Find(ctx context.Context, q Query, out any) error {
	opts := options.Find()
	if q.SortBy != "" {
		opts.SetSort(bson.D{{Key: q.SortBy, Value: -1}, {Key: insertOrderField, Value: -1}})
	}
	cur, err := c.coll.Find(ctx, mongoFilter(q.Filters), opts)
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (c *mongoCollection) FindOne(ctx context.Context, filters []Filter, out any) error {
	err := c.coll.FindOne(ctx, mongoFilter(filters)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (c *mongoCollection) Insert(ctx context.Context, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return "", err
	}

	var id string
	for _, e := range fields {
		if e.Key == "_id" {
			id, _ = e.Value.(string)
		}
	}
	if id == "" {
		id = uuid.NewString()
		fields = append(bson.D{{Key: "_id", Value: id}}, fields...)
	}

	// ObjectIDs grow with a per-process counter, giving ties a stable newest-first order.
	fields = append(fields, bson.E{Key: insertOrderField, Value: bson.NewObjectID()})

	if _, err := c.coll.InsertOne(ctx, fields); err != nil {
		return "", mongoWriteError(err)
	}
	return id, nil
}

func (c *mongoCollection) Update(ctx context.Context, filters []Filter, set map[string]any) error {
	res, err := c.coll.UpdateOne(ctx, mongoFilter(filters), bson.M{"$set": set})
	if err != nil {
		return mongoWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Increment(ctx context.Context, filters []Filter, field string, delta int64) error {
	res, err := c.coll.UpdateOne(ctx, mongoFilter(filters), bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return mongoWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, filters []Filter) error {
	res, err := c.coll.DeleteOne(ctx, mongoFilter(filters))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Count(ctx context.Context, filters []Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, mongoFilter(filters))
}

func mongoFilter(filters []Filter) bson.D {
	doc := bson.D{}
	for _, f := range filters {
		switch {
		case len(f.Fields) > 0:
			anyOf := bson.A{}
			for _, field := range f.Fields {
				anyOf = append(anyOf, bson.D{{Key: field, Value: containsRegex(f.Value)}})
			}
			doc = append(doc, bson.E{Key: "$or", Value: anyOf})
		case f.Match == MatchContains:
			doc = append(doc, bson.E{Key: f.Field, Value: containsRegex(f.Value)})
		default:
			doc = append(doc, bson.E{Key: f.Field, Value: f.Value})
		}
	}
	return doc
}

func containsRegex(v any) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(fmt.Sprint(v)), Options: "i"}
}

func mongoWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
