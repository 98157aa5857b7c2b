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

// mongoProgressRepository implements repository.ProgressRepository over the
// progress and userActivity collections.
type mongoProgressRepository struct {
	client   *mongo.Client
	progress *mongo.Collection
	activity *mongo.Collection
}

// NewMongoProgressRepository creates a new progress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		client:   db.Client(),
		progress: db.Collection(ProgressCollection),
		activity: db.Collection(ActivityCollection),
	}
}

// MarkCompleted upserts the (user, lesson) record as completed.
// $min keeps the first completion time when the lesson is marked again.
func (r *mongoProgressRepository) MarkCompleted(ctx context.Context, record *domain.ProgressRecord) error {
	if record.UserID == primitive.NilObjectID || record.LessonID == "" {
		return errors.New("progress requires userId and lessonId")
	}
	now := time.Now().UTC()
	if record.CompletedAt != nil {
		now = record.CompletedAt.UTC()
	}
	record.ID = domain.ProgressID(record.UserID, record.LessonID)

	update := bson.M{
		"$set": bson.M{
			"userId":    record.UserID,
			"courseId":  record.CourseID,
			"lessonId":  record.LessonID,
			"videoId":   record.VideoID,
			"completed": true,
			"updatedAt": now,
		},
		"$min":         bson.M{"completedAt": now},
		"$setOnInsert": bson.M{"seekTo": 0.0},
	}
	_, err := r.progress.UpdateOne(ctx, bson.M{"_id": record.ID}, update, options.Update().SetUpsert(true))
	return err
}

// UpsertPosition stores the playback offset without touching the completed flag.
func (r *mongoProgressRepository) UpsertPosition(ctx context.Context, record *domain.ProgressRecord) error {
	if record.UserID == primitive.NilObjectID || record.LessonID == "" {
		return errors.New("progress requires userId and lessonId")
	}
	record.ID = domain.ProgressID(record.UserID, record.LessonID)

	update := bson.M{
		"$set": bson.M{
			"seekTo":    record.SeekTo,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"userId":    record.UserID,
			"courseId":  record.CourseID,
			"lessonId":  record.LessonID,
			"videoId":   record.VideoID,
			"completed": false,
		},
	}
	_, err := r.progress.UpdateOne(ctx, bson.M{"_id": record.ID}, update, options.Update().SetUpsert(true))
	return err
}

// Get retrieves a single progress record.
func (r *mongoProgressRepository) Get(ctx context.Context, userID primitive.ObjectID, lessonID string) (*domain.ProgressRecord, error) {
	var record domain.ProgressRecord
	err := r.progress.FindOne(ctx, bson.M{"_id": domain.ProgressID(userID, lessonID)}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

type lessonRef struct {
	UserID   primitive.ObjectID `bson:"userId"`
	LessonID string             `bson:"lessonId"`
}

// CompletedLessonIDs lists the lessons a user has completed.
func (r *mongoProgressRepository) CompletedLessonIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	refs, err := r.findRefs(ctx, bson.M{"userId": userID, "completed": true})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.LessonID
	}
	return ids, nil
}

// AllCompleted groups every completed lesson by user.
func (r *mongoProgressRepository) AllCompleted(ctx context.Context) (map[string][]string, error) {
	refs, err := r.findRefs(ctx, bson.M{"completed": true})
	if err != nil {
		return nil, err
	}
	all := make(map[string][]string)
	for _, ref := range refs {
		key := ref.UserID.Hex()
		all[key] = append(all[key], ref.LessonID)
	}
	return all, nil
}

func (r *mongoProgressRepository) findRefs(ctx context.Context, filter bson.M) ([]lessonRef, error) {
	findOptions := options.Find().SetProjection(bson.M{"userId": 1, "lessonId": 1})
	cursor, err := r.progress.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var refs []lessonRef
	if err = cursor.All(ctx, &refs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// CountCompletedSince counts lessons completed at or after since.
func (r *mongoProgressRepository) CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"userId":      userID,
		"completed":   true,
		"completedAt": bson.M{"$gte": since.UTC()},
	}
	return r.progress.CountDocuments(ctx, filter)
}

// CourseIDs returns the distinct course IDs referenced by progress or activity rows.
func (r *mongoProgressRepository) CourseIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, coll := range []*mongo.Collection{r.progress, r.activity} {
		values, err := coll.Distinct(ctx, "courseId", bson.M{})
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			id, ok := v.(primitive.ObjectID)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SetLastWatched upserts the (user, course) activity pointer.
func (r *mongoProgressRepository) SetLastWatched(ctx context.Context, activity *domain.LastWatchedActivity) error {
	if activity.UserID == primitive.NilObjectID || activity.CourseID == primitive.NilObjectID {
		return errors.New("activity requires userId and courseId")
	}
	activity.ID = domain.ActivityID(activity.UserID, activity.CourseID)
	if activity.LastWatchedAt.IsZero() {
		activity.LastWatchedAt = time.Now().UTC()
	}

	_, err := r.activity.ReplaceOne(ctx, bson.M{"_id": activity.ID}, activity, options.Replace().SetUpsert(true))
	return err
}

// GetLastWatched reads the (user, course) activity pointer.
func (r *mongoProgressRepository) GetLastWatched(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.LastWatchedActivity, error) {
	var activity domain.LastWatchedActivity
	err := r.activity.FindOne(ctx, bson.M{"_id": domain.ActivityID(userID, courseID)}).Decode(&activity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// DeleteForUser removes all progress and activity of a user atomically.
func (r *mongoProgressRepository) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID}
	return r.deleteMany(ctx, filter, filter)
}

// DeleteForCourse removes all progress and activity that reference a course atomically.
func (r *mongoProgressRepository) DeleteForCourse(ctx context.Context, courseID primitive.ObjectID) error {
	filter := bson.M{"courseId": courseID}
	return r.deleteMany(ctx, filter, filter)
}

// DeleteForLessons removes the progress of lessons dropped from a course atomically.
func (r *mongoProgressRepository) DeleteForLessons(ctx context.Context, courseID primitive.ObjectID, lessonIDs []string) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return r.deleteMany(ctx,
		bson.M{"courseId": courseID, "lessonId": bson.M{"$in": lessonIDs}},
		bson.M{"courseId": courseID, "lastWatchedLessonId": bson.M{"$in": lessonIDs}},
	)
}

func (r *mongoProgressRepository) deleteMany(ctx context.Context, progressFilter, activityFilter bson.M) error {
	err := withTransaction(ctx, r.client, func(sessCtx mongo.SessionContext) error {
		if _, err := r.progress.DeleteMany(sessCtx, progressFilter); err != nil {
			return err
		}
		if _, err := r.activity.DeleteMany(sessCtx, activityFilter); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return errors.Join(repository.ErrDeleteFailed, err)
	}
	return nil
}

// EnsureProgressIndexes creates the indexes of the progress and userActivity collections.
func EnsureProgressIndexes(ctx context.Context, progress, activity *mongo.Collection) error {
	progressIndexes := []mongo.IndexModel{
		{
			// Watched set and daily count
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "completed", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := progress.Indexes().CreateMany(ctx, progressIndexes); err != nil {
		return err
	}

	activityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index()},
		{Keys: bson.D{{Key: "courseId", Value: 1}}, Options: options.Index()},
	}
	_, err := activity.Indexes().CreateMany(ctx, activityIndexes)
	return err
}
