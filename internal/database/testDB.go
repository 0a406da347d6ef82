package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// Teardown stops a test container.
type Teardown func(context.Context, ...testcontainers.TerminateOption) error

// GetTestMongo starts a MongoDB container and returns a store with indexes created.
func GetTestMongo(ctx context.Context) (Teardown, *MongoStore, error) {
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container.Terminate, nil, err
	}

	store, err := NewMongoStore(ctx, uri, "sachin_security_test", false)
	if err != nil {
		return container.Terminate, nil, err
	}
	if err := store.EnsureIndexes(ctx, model.UniqueIndexes); err != nil {
		return container.Terminate, nil, err
	}
	return container.Terminate, store, nil
}

// GetTestPostgres starts a PostgreSQL container and returns a migrated store with indexes created.
func GetTestPostgres(ctx context.Context) (Teardown, *PostgresStore, error) {
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort.Port(), dbUser, dbPwd, dbName)

	store, err := NewPostgresStore(dsn)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}
	if err := store.EnsureIndexes(ctx, model.UniqueIndexes); err != nil {
		return dbContainer.Terminate, nil, err
	}
	return dbContainer.Terminate, store, nil
}
