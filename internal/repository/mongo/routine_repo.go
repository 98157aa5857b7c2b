package mongo

import (
	"context"
	"errors"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRoutineRepository implements repository.RoutineRepository.
// The document _id is the owning user's ID.
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new WeeklyRoutine repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(RoutineCollection),
	}
}

// Get returns the stored routine of a user.
func (r *mongoRoutineRepository) Get(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyRoutine, error) {
	var routine domain.WeeklyRoutine
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// Save overwrites the whole routine document.
func (r *mongoRoutineRepository) Save(ctx context.Context, routine *domain.WeeklyRoutine) error {
	if routine.UserID == primitive.NilObjectID {
		return errors.New("routine requires a user ID")
	}
	routine.UpdatedAt = time.Now().UTC()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": routine.UserID}, routine, options.Replace().SetUpsert(true))
	return err
}

// Delete removes the routine. Deleting a missing routine is not an error.
func (r *mongoRoutineRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
