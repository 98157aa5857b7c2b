// Package testsupport provides in-memory repository doubles for service and handler tests.
package testsupport

import (
	"context"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stores bundles one of each in-memory repository.
type Stores struct {
	Courses  *CourseRepo
	Users    *UserRepo
	Progress *ProgressRepo
	Routines *RoutineRepo
}

// NewStores returns an empty set of repositories.
func NewStores() *Stores {
	return &Stores{
		Courses:  NewCourseRepo(),
		Users:    NewUserRepo(),
		Progress: NewProgressRepo(),
		Routines: NewRoutineRepo(),
	}
}

// --- Courses ---

// CourseRepo enforces the same unique slug, order and lesson id rules as the Mongo indexes.
type CourseRepo struct {
	mu      sync.Mutex
	courses map[primitive.ObjectID]domain.Course
}

var _ repository.CourseRepository = (*CourseRepo)(nil)

func NewCourseRepo() *CourseRepo {
	return &CourseRepo{courses: map[primitive.ObjectID]domain.Course{}}
}

func copyCourse(c domain.Course) domain.Course {
	c.Lessons = append([]domain.Lesson{}, c.Lessons...)
	return c
}

// conflicts must be called with mu held.
func (r *CourseRepo) conflicts(c *domain.Course) bool {
	for id, other := range r.courses {
		if id == c.ID {
			continue
		}
		if other.Slug == c.Slug || other.Order == c.Order {
			return true
		}
		for _, l := range c.Lessons {
			if other.HasLesson(l.ID) {
				return true
			}
		}
	}
	return false
}

func (r *CourseRepo) Create(_ context.Context, course *domain.Course) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	course.ID = primitive.NewObjectID()
	if r.conflicts(course) {
		return primitive.NilObjectID, repository.ErrConflict
	}
	if course.Lessons == nil {
		course.Lessons = []domain.Lesson{}
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	r.courses[course.ID] = copyCourse(*course)
	return course.ID, nil
}

func (r *CourseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = copyCourse(c)
	return &c, nil
}

func (r *CourseRepo) GetBySlug(_ context.Context, slug string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == slug {
			c = copyCourse(c)
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CourseRepo) List(_ context.Context) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, copyCourse(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *CourseRepo) MaxOrder(_ context.Context) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maxOrder, ok := 0, false
	for _, c := range r.courses {
		if !ok || c.Order > maxOrder {
			maxOrder, ok = c.Order, true
		}
	}
	return maxOrder, ok, nil
}

func (r *CourseRepo) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.courses[course.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(course) {
		return repository.ErrConflict
	}
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now().UTC()
	r.courses[course.ID] = copyCourse(*course)
	return nil
}

func (r *CourseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *CourseRepo) Reorder(_ context.Context, ids []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(ids) != len(r.courses) {
		return repository.ErrReorderInvalid
	}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if _, ok := r.courses[id]; !ok || seen[id] {
			return repository.ErrReorderInvalid
		}
		seen[id] = true
	}
	now := time.Now().UTC()
	for i, id := range ids {
		c := r.courses[id]
		c.Order = i
		c.UpdatedAt = now
		r.courses[id] = c
	}
	return nil
}

// --- Users ---

type UserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *UserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// --- Progress ---

// ProgressRepo mirrors the upsert semantics of the Mongo progress repository.
// Set FailDeletes to make the purge operations fail.
type ProgressRepo struct {
	mu          sync.Mutex
	records     map[string]domain.ProgressRecord
	activity    map[string]domain.LastWatchedActivity
	FailDeletes error
}

var _ repository.ProgressRepository = (*ProgressRepo)(nil)

func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{
		records:  map[string]domain.ProgressRecord{},
		activity: map[string]domain.LastWatchedActivity{},
	}
}

func (r *ProgressRepo) MarkCompleted(_ context.Context, record *domain.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	completedAt := now
	if record.CompletedAt != nil {
		completedAt = *record.CompletedAt
	}

	existing, ok := r.records[record.ID]
	if !ok {
		existing = domain.ProgressRecord{ID: record.ID}
	}
	existing.UserID = record.UserID
	existing.CourseID = record.CourseID
	existing.LessonID = record.LessonID
	existing.VideoID = record.VideoID
	existing.Completed = true
	existing.UpdatedAt = now
	if existing.CompletedAt == nil || completedAt.Before(*existing.CompletedAt) {
		existing.CompletedAt = &completedAt
	}
	r.records[record.ID] = existing
	return nil
}

func (r *ProgressRepo) UpsertPosition(_ context.Context, record *domain.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[record.ID]
	if !ok {
		existing = domain.ProgressRecord{
			ID:       record.ID,
			UserID:   record.UserID,
			CourseID: record.CourseID,
			LessonID: record.LessonID,
			VideoID:  record.VideoID,
		}
	}
	existing.SeekTo = record.SeekTo
	existing.UpdatedAt = time.Now().UTC()
	r.records[record.ID] = existing
	return nil
}

func (r *ProgressRepo) Get(_ context.Context, userID primitive.ObjectID, lessonID string) (*domain.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[domain.ProgressID(userID, lessonID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *ProgressRepo) CompletedLessonIDs(_ context.Context, userID primitive.ObjectID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []string{}
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Completed {
			ids = append(ids, rec.LessonID)
		}
	}
	return ids, nil
}

func (r *ProgressRepo) CountCompletedSince(_ context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Completed && rec.CompletedAt != nil && !rec.CompletedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *ProgressRepo) AllCompleted(_ context.Context) (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]string{}
	for _, rec := range r.records {
		if rec.Completed {
			key := rec.UserID.Hex()
			out[key] = append(out[key], rec.LessonID)
		}
	}
	return out, nil
}

func (r *ProgressRepo) CourseIDs(_ context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := map[primitive.ObjectID]bool{}
	for _, rec := range r.records {
		set[rec.CourseID] = true
	}
	for _, a := range r.activity {
		set[a.CourseID] = true
	}
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return strings.Compare(ids[i].Hex(), ids[j].Hex()) < 0 })
	return ids, nil
}

func (r *ProgressRepo) SetLastWatched(_ context.Context, activity *domain.LastWatchedActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity.ID = domain.ActivityID(activity.UserID, activity.CourseID)
	if activity.LastWatchedAt.IsZero() {
		activity.LastWatchedAt = time.Now().UTC()
	}
	r.activity[activity.ID] = *activity
	return nil
}

func (r *ProgressRepo) GetLastWatched(_ context.Context, userID, courseID primitive.ObjectID) (*domain.LastWatchedActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activity[domain.ActivityID(userID, courseID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *ProgressRepo) DeleteForUser(_ context.Context, userID primitive.ObjectID) error {
	return r.deleteWhere(func(u, _ primitive.ObjectID, _ string) bool { return u == userID })
}

func (r *ProgressRepo) DeleteForCourse(_ context.Context, courseID primitive.ObjectID) error {
	return r.deleteWhere(func(_, c primitive.ObjectID, _ string) bool { return c == courseID })
}

func (r *ProgressRepo) DeleteForLessons(_ context.Context, courseID primitive.ObjectID, lessonIDs []string) error {
	dropped := make(map[string]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		dropped[id] = true
	}
	return r.deleteWhere(func(_, c primitive.ObjectID, lessonID string) bool {
		return c == courseID && dropped[lessonID]
	})
}

// deleteWhere matches progress by lesson id and activity by last watched lesson id.
func (r *ProgressRepo) deleteWhere(match func(userID, courseID primitive.ObjectID, lessonID string) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDeletes != nil {
		return r.FailDeletes
	}
	for id, rec := range r.records {
		if match(rec.UserID, rec.CourseID, rec.LessonID) {
			delete(r.records, id)
		}
	}
	for id, a := range r.activity {
		if match(a.UserID, a.CourseID, a.LastWatchedLessonID) {
			delete(r.activity, id)
		}
	}
	return nil
}

// Len returns the number of progress records and activity rows.
func (r *ProgressRepo) Len() (records, activity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), len(r.activity)
}

// --- Routines ---

type RoutineRepo struct {
	mu       sync.Mutex
	routines map[primitive.ObjectID]domain.WeeklyRoutine
}

var _ repository.RoutineRepository = (*RoutineRepo)(nil)

func NewRoutineRepo() *RoutineRepo {
	return &RoutineRepo{routines: map[primitive.ObjectID]domain.WeeklyRoutine{}}
}

func (r *RoutineRepo) Get(_ context.Context, userID primitive.ObjectID) (*domain.WeeklyRoutine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routines[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}

func (r *RoutineRepo) Save(_ context.Context, routine *domain.WeeklyRoutine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	routine.UpdatedAt = time.Now().UTC()
	r.routines[routine.UserID] = *routine
	return nil
}

func (r *RoutineRepo) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routines, userID)
	return nil
}
