package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// document is one row of the shared documents table; Body holds the JSON document.
type document struct {
	Seq        int64          `gorm:"primaryKey;autoIncrement"`
	Collection string         `gorm:"not null;uniqueIndex:idx_documents_collection_id"`
	ID         string         `gorm:"column:id;not null;uniqueIndex:idx_documents_collection_id"`
	Body       datatypes.JSON `gorm:"type:jsonb;not null"`
}

type sequence struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

type txKey struct{}

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db *gorm.DB
	// cached raw DB and mutex for lazy-init
	sqlDB *sql.DB
	mu    sync.RWMutex
}

type postgresCollection struct {
	store *PostgresStore
	name  string
}

// NewPostgresStore opens dsn with gorm and migrates the documents and sequences tables.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if gin.IsDebugging() {
		gdb = gdb.Debug()
	}

	if err := gdb.AutoMigrate(&document{}, &sequence{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresStore{db: gdb}, nil
}

// conn returns the transaction bound to ctx, if any.
func (s *PostgresStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// Collection implements Store.
func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{store: s, name: name}
}

// NextSequence implements Store with an upsert on the sequences table.
func (s *PostgresStore) NextSequence(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.conn(ctx).Raw(
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}

// WithTransaction implements Store.
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// EnsureIndexes creates partial unique expression indexes per collection.
func (s *PostgresStore) EnsureIndexes(ctx context.Context, unique map[string][][]string) error {
	for name, keySets := range unique {
		if !fieldPattern.MatchString(name) {
			return fmt.Errorf("invalid collection name %q", name)
		}
		for _, keys := range keySets {
			exprs := make([]string, 0, len(keys))
			for _, k := range keys {
				if !fieldPattern.MatchString(k) {
					return fmt.Errorf("invalid index field %q", k)
				}
				exprs = append(exprs, fmt.Sprintf("(body->>'%s')", k))
			}
			stmt := fmt.Sprintf(
				"CREATE UNIQUE INDEX IF NOT EXISTS uniq_%s_%s ON documents (%s) WHERE collection = '%s'",
				name, strings.Join(keys, "_"), strings.Join(exprs, ", "), name)
			if err := s.conn(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("create index on %s: %w", name, err)
			}
		}
	}
	return nil
}

// Drop implements Store.
func (s *PostgresStore) Drop(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.conn(ctx).Where("collection IN ?", names).Delete(&document{}).Error; err != nil {
			return err
		}
		return s.conn(ctx).Where("name IN ?", names).Delete(&sequence{}).Error
	})
}

// Raw returns the underlying *sql.DB, caching it after the first successful retrieval.
// It is safe for concurrent use.
func (s *PostgresStore) Raw() (*sql.DB, error) {
	s.mu.RLock()
	if s.sqlDB != nil {
		raw := s.sqlDB
		s.mu.RUnlock()
		return raw, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB != nil {
		return s.sqlDB, nil
	}
	raw, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	s.sqlDB = raw
	return raw, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *PostgresStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := map[string]string{"driver": "postgres"}

	oriDB, err := s.Raw()
	if err == nil {
		err = oriDB.PingContext(ctx)
	}
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		slog.Error("db down", slog.String("error", err.Error()))
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := oriDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *PostgresStore) Close(context.Context) error {
	oriDB, err := s.Raw()
	if err != nil {
		return err
	}
	return oriDB.Close()
}

func (c *postgresCollection) scoped(ctx context.Context, filters []Filter) (*gorm.DB, error) {
	tx := c.store.conn(ctx).Model(&document{}).Where("collection = ?", c.name)
	for _, f := range filters {
		if len(f.Fields) > 0 {
			parts := make([]string, 0, len(f.Fields))
			args := make([]any, 0, 2*len(f.Fields))
			pattern := "%" + escapeLike(fmt.Sprint(f.Value)) + "%"
			for _, field := range f.Fields {
				if !fieldPattern.MatchString(field) {
					return nil, fmt.Errorf("invalid filter field %q", field)
				}
				parts = append(parts, "body->>? ILIKE ?")
				args = append(args, field, pattern)
			}
			tx = tx.Where("("+strings.Join(parts, " OR ")+")", args...)
			continue
		}
		if !fieldPattern.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch {
		case f.Field == "_id":
			tx = tx.Where("id = ?", fmt.Sprint(f.Value))
		case f.Match == MatchContains:
			tx = tx.Where("body->>? ILIKE ?", f.Field, "%"+escapeLike(fmt.Sprint(f.Value))+"%")
		default:
			tx = tx.Where("body->>? = ?", f.Field, fmt.Sprint(f.Value))
		}
	}
	return tx, nil
}

func (c *postgresCollection) Find(ctx context.Context, q Query, out any) error {
	tx, err := c.scoped(ctx, q.Filters)
	if err != nil {
		return err
	}
	if q.SortBy != "" {
		tx = tx.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(body->>?)::timestamptz DESC, seq DESC",
			Vars:               []any{q.SortBy},
			WithoutParentheses: true,
		}})
	} else {
		tx = tx.Order("seq")
	}

	var rows []document
	if err := tx.Find(&rows).Error; err != nil {
		return fmt.Errorf("find in %s: %w", c.name, err)
	}

	bodies := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		bodies[i] = json.RawMessage(row.Body)
	}
	raw, err := json.Marshal(bodies)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *postgresCollection) FindOne(ctx context.Context, filters []Filter, out any) error {
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return err
	}
	var rows []document
	if err := tx.Order("seq").Limit(1).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(rows[0].Body, out)
}

func (c *postgresCollection) Insert(ctx context.Context, doc any) (string, error) {
	fields, id, err := toDocument(doc)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	row := document{Collection: c.name, ID: id, Body: datatypes.JSON(body)}
	if err := c.store.conn(ctx).Create(&row).Error; err != nil {
		return "", postgresWriteError(err)
	}
	return id, nil
}

func (c *postgresCollection) Update(ctx context.Context, filters []Filter, set map[string]any) error {
	patch, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return err
	}
	res := tx.Update("body", gorm.Expr("body || ?::jsonb", string(patch)))
	if res.Error != nil {
		return postgresWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Increment(ctx context.Context, filters []Filter, field string, delta int64) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid field %q", field)
	}
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return err
	}
	res := tx.Update("body", gorm.Expr(
		"jsonb_set(body, ARRAY[?]::text[], to_jsonb(COALESCE((body->>?)::bigint, 0) + ?))",
		field, field, delta))
	if res.Error != nil {
		return postgresWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Delete(ctx context.Context, filters []Filter) error {
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return err
	}
	res := tx.Delete(&document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Count(ctx context.Context, filters []Filter) (int64, error) {
	tx, err := c.scoped(ctx, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	err = tx.Count(&n).Error
	return n, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func postgresWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.Message)
	}
	return err
}
