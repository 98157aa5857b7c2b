package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names shared by the repositories and the index setup.
const (
	CourseCollection   = "courses"
	UserCollection     = "users"
	ProgressCollection = "progress"
	ActivityCollection = "userActivity"
	RoutineCollection  = "routines"
)

// ConnectDB opens a client and pings the primary. Transactions used by the course
// reorder and the progress purges need the URI to name a replica set.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetAppName("lessonhub")

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Connect is lazy; the ping surfaces a wrong URI or an unreachable server here.
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// withTransaction runs fn inside a multi-document transaction.
// Transactions require a replica set or sharded cluster; a standalone server returns an error.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// EnsureIndexes creates the indexes of every collection. The unique indexes on
// courses.slug and courses.order back the uniqueness guarantees of the course store.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureCourseIndexes(ctx, db.Collection(CourseCollection)); err != nil {
		return err
	}
	if err := EnsureUserIndexes(ctx, db.Collection(UserCollection)); err != nil {
		return err
	}
	return EnsureProgressIndexes(ctx, db.Collection(ProgressCollection), db.Collection(ActivityCollection))
}
