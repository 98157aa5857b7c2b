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

// mongoCourseRepository implements repository.CourseRepository
type mongoCourseRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoCourseRepository creates a new Course repository backed by MongoDB.
func NewMongoCourseRepository(db *mongo.Database) repository.CourseRepository {
	return &mongoCourseRepository{
		client:     db.Client(),
		collection: db.Collection(CourseCollection),
	}
}

// Create inserts a new course document.
func (r *mongoCourseRepository) Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error) {
	if course.Slug == "" || course.Title == "" {
		return primitive.NilObjectID, errors.New("course slug and title are required")
	}
	if course.Lessons == nil {
		course.Lessons = []domain.Lesson{}
	}

	course.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, course)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted course ID")
	}
	return insertedID, nil
}

// GetByID retrieves a course by its ID.
func (r *mongoCourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetBySlug retrieves a course by its slug.
func (r *mongoCourseRepository) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoCourseRepository) findOne(ctx context.Context, filter bson.M) (*domain.Course, error) {
	var course domain.Course
	err := r.collection.FindOne(ctx, filter).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// List returns every course sorted by display order.
func (r *mongoCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

// MaxOrder returns the highest order value in use.
func (r *mongoCourseRepository) MaxOrder(ctx context.Context) (int, bool, error) {
	var doc struct {
		Order int `bson:"order"`
	}
	findOptions := options.FindOne().
		SetSort(bson.D{{Key: "order", Value: -1}}).
		SetProjection(bson.M{"order": 1})

	err := r.collection.FindOne(ctx, bson.M{}, findOptions).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return doc.Order, true, nil
}

// Update replaces every mutable field of the course, including the lesson list.
func (r *mongoCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	if course.ID == primitive.NilObjectID {
		return errors.New("course ID is required for update")
	}
	if course.Lessons == nil {
		course.Lessons = []domain.Lesson{}
	}
	course.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": course.ID}
	update := bson.M{
		"$set": bson.M{
			"slug":        course.Slug,
			"title":       course.Title,
			"description": course.Description,
			"thumbnail":   course.Thumbnail,
			"lessons":     course.Lessons,
			"order":       course.Order,
			"updatedAt":   course.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the course document only.
func (r *mongoCourseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Reorder rewrites the order field of every course in a single transaction.
// Orders are first moved to negative placeholders so the unique index on
// order never sees two courses sharing a value mid-batch.
func (r *mongoCourseRepository) Reorder(ctx context.Context, ids []primitive.ObjectID) error {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return repository.ErrReorderInvalid
		}
		seen[id] = struct{}{}
	}

	return withTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		total, err := r.collection.CountDocuments(sessCtx, bson.M{})
		if err != nil {
			return err
		}
		matched, err := r.collection.CountDocuments(sessCtx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		if total != int64(len(ids)) || matched != total {
			return repository.ErrReorderInvalid
		}

		now := time.Now().UTC()
		models := make([]mongo.WriteModel, 0, 2*len(ids))
		for i, id := range ids {
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": id}).
				SetUpdate(bson.M{"$set": bson.M{"order": -(i + 1)}}))
		}
		for i, id := range ids {
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": id}).
				SetUpdate(bson.M{"$set": bson.M{"order": i, "updatedAt": now}}))
		}

		_, err = r.collection.BulkWrite(sessCtx, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repository.ErrConflict
			}
			return err
		}
		return nil
	})
}

// EnsureCourseIndexes creates necessary indexes for the courses collection.
func EnsureCourseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("course_slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "order", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("course_order_unique"),
		},
		{
			// Progress is keyed by (user, lesson), so a lesson id may belong to one course only.
			// Multikey uniqueness is across documents; repeats inside one course are rejected by the service.
			Keys:    bson.D{{Key: "lessons.id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("lesson_id_unique"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
