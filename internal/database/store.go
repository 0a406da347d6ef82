// Package database implements the document store used by every resource collection.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
)

var (
	// ErrNotFound is returned when no document matches a filter.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)

// MatchKind selects how a Filter compares a field.
type MatchKind int

const (
	// MatchExact compares the field for equality.
	MatchExact MatchKind = iota
	// MatchContains is a case-insensitive substring match.
	MatchContains
)

// Filter restricts a query to documents whose Field matches Value.
// A contains filter with Fields matches when any of them contains Value.
type Filter struct {
	Field  string
	Fields []string
	Value  any
	Match  MatchKind
}

// Eq builds an exact match filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value, Match: MatchExact}
}

// Contains builds a case-insensitive substring filter.
func Contains(field, value string) Filter {
	return Filter{Field: field, Value: value, Match: MatchContains}
}

// Search builds a case-insensitive substring filter over several fields.
func Search(value string, fields ...string) Filter {
	return Filter{Fields: fields, Value: value, Match: MatchContains}
}

// ByID selects a document by its human readable id.
func ByID(id string) []Filter {
	return []Filter{Eq("id", id)}
}

// ByStorageID selects a document by its storage-assigned identifier.
func ByStorageID(id string) []Filter {
	return []Filter{Eq("_id", id)}
}

// Query is a filtered list request. SortBy names a timestamp field, sorted newest first.
type Query struct {
	Filters []Filter
	SortBy  string
}

// Collection is a named set of documents.
// Update, Increment and Delete act on the first matching document.
type Collection interface {
	// Find decodes every match into out, which must point to a slice.
	Find(ctx context.Context, q Query, out any) error
	FindOne(ctx context.Context, filters []Filter, out any) error
	// Insert stores doc and returns its storage-assigned identifier.
	Insert(ctx context.Context, doc any) (string, error)
	Update(ctx context.Context, filters []Filter, set map[string]any) error
	Increment(ctx context.Context, filters []Filter, field string, delta int64) error
	Delete(ctx context.Context, filters []Filter) error
	Count(ctx context.Context, filters []Filter) (int64, error)
}

// Store is a document database holding named collections.
type Store interface {
	Collection(name string) Collection
	// NextSequence atomically increments and returns the counter called name.
	NextSequence(ctx context.Context, name string) (int64, error)
	// WithTransaction runs fn so that its writes commit or roll back together
	// when the backend supports it. fn must use the context it receives.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// EnsureIndexes creates unique indexes, keyed by collection.
	EnsureIndexes(ctx context.Context, unique map[string][][]string) error
	// Drop removes the named collections and their counters.
	Drop(ctx context.Context, names ...string) error
	Health(ctx context.Context) map[string]string
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.Name, cfg.MongoTransactions)
	case config.DriverPostgres:
		return NewPostgresStore(cfg.PostgresDSN)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// toDocument flattens doc into a json field map and assigns an _id when missing.
func toDocument(doc any) (map[string]any, string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", fmt.Errorf("document must be an object: %w", err)
	}

	id, _ := fields["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		fields["_id"] = id
	}
	return fields, id, nil
}
