package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.
	"lessonhub/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrConflict       = RepositoryError("conflict")
	ErrUpdateFailed   = RepositoryError("update failed")
	ErrDeleteFailed   = RepositoryError("delete failed")
	ErrReorderInvalid = RepositoryError("reorder list must contain every course exactly once")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CourseRepository defines the interface for interacting with course documents.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error) // Sorted by order ascending
	MaxOrder(ctx context.Context) (int, bool, error)    // false when there are no courses
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Reorder assigns order = index to every course in ids, all-or-nothing.
	Reorder(ctx context.Context, ids []primitive.ObjectID) error
}

// UserRepository defines the interface for interacting with profile data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error) // Sorted by name
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgressRepository owns the progress and userActivity collections.
type ProgressRepository interface {
	// MarkCompleted upserts the record with completed=true. completedAt is kept from the first completion.
	MarkCompleted(ctx context.Context, record *domain.ProgressRecord) error
	// UpsertPosition patches seekTo/updatedAt, creating the record with completed=false if missing.
	UpsertPosition(ctx context.Context, record *domain.ProgressRecord) error
	Get(ctx context.Context, userID primitive.ObjectID, lessonID string) (*domain.ProgressRecord, error)
	CompletedLessonIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
	// AllCompleted returns every user's completed lesson IDs keyed by user ID hex.
	AllCompleted(ctx context.Context) (map[string][]string, error)
	CourseIDs(ctx context.Context) ([]primitive.ObjectID, error)

	SetLastWatched(ctx context.Context, activity *domain.LastWatchedActivity) error
	GetLastWatched(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.LastWatchedActivity, error)

	// DeleteForUser removes progress and activity rows of a user in one batch.
	DeleteForUser(ctx context.Context, userID primitive.ObjectID) error
	// DeleteForCourse removes progress and activity rows that reference a course.
	DeleteForCourse(ctx context.Context, courseID primitive.ObjectID) error
	// DeleteForLessons removes progress of the given lessons of a course and
	// activity rows that point at one of them.
	DeleteForLessons(ctx context.Context, courseID primitive.ObjectID, lessonIDs []string) error
}

// RoutineRepository stores one WeeklyRoutine document per user.
type RoutineRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.WeeklyRoutine, error)
	Save(ctx context.Context, routine *domain.WeeklyRoutine) error // Full overwrite
	Delete(ctx context.Context, userID primitive.ObjectID) error
}
