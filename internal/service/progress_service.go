package service

import (
	"context"
	"errors"
	"fmt"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jinzhu/now"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaybackResult is the state left behind by a player event.
type PlaybackResult struct {
	LessonID  string  `json:"lessonId"`
	Completed bool    `json:"completed"`
	SeekTo    float64 `json:"seekTo"`
}

// ResumeState tells the lesson page where to pick up.
type ResumeState struct {
	CourseID         primitive.ObjectID `json:"courseId"`
	LessonID         string             `json:"lessonId"` // Last watched, or the first lesson
	SeekTo           float64            `json:"seekTo"`
	WatchedLessonIDs []string           `json:"watchedLessonIds"` // Completed lessons of this course
}

// ProgressSummary backs the dashboard summary and goals cards.
type ProgressSummary struct {
	Completed    int   `json:"completed"`
	Total        int   `json:"total"`
	Remaining    int   `json:"remaining"`
	Percentage   int   `json:"percentage"`
	WatchedToday int64 `json:"watchedToday"`
}

// --- Service Interface ---
type ProgressService interface {
	MarkWatched(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) error
	GetWatchedLessonIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error)
	SetLastWatchedLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) error
	// GetLastWatchedLessonID returns nil when nothing was recorded for the course.
	GetLastWatchedLessonID(ctx context.Context, userID, courseID primitive.ObjectID) (*string, error)
	UpdateLessonProgress(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, seekTo float64) error
	GetLessonsWatchedTodayCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteProgressForUser(ctx context.Context, userID primitive.ObjectID) error

	ReportPlayback(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, state domain.PlayerState, position float64) (*PlaybackResult, error)
	// GetResumeState returns nil when the course does not exist.
	GetResumeState(ctx context.Context, userID, courseID primitive.ObjectID) (*ResumeState, error)
	GetProgressSummary(ctx context.Context, userID primitive.ObjectID) (*ProgressSummary, error)
	GetAllProgress(ctx context.Context) (map[string][]string, error)
	// PruneOrphans deletes progress of courses that no longer exist and returns how many courses were purged.
	PruneOrphans(ctx context.Context) (int, error)
}

// --- Service Implementation ---

// progressService implements the ProgressService interface.
type progressService struct {
	courseRepo   repository.CourseRepository
	progressRepo repository.ProgressRepository
	location     *time.Location // Defines "today"
	clock        func() time.Time
	logger       *log.Logger
}

// NewProgressService creates a new instance of progressService. A nil location means time.Local.
func NewProgressService(
	courseRepo repository.CourseRepository,
	progressRepo repository.ProgressRepository,
	location *time.Location,
	logger *log.Logger,
) ProgressService {
	if location == nil {
		location = time.Local
	}
	return &progressService{
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		location:     location,
		clock:        time.Now,
		logger:       logger,
	}
}

// MarkWatched records the lesson as completed. Repeating the call keeps the first completion time.
func (s *progressService) MarkWatched(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) error {
	lesson, err := s.lessonOf(ctx, courseID, lessonID)
	if err != nil {
		return err
	}

	completedAt := s.clock().UTC()
	record := &domain.ProgressRecord{
		ID:          domain.ProgressID(userID, lesson.ID),
		UserID:      userID,
		CourseID:    courseID,
		LessonID:    lesson.ID,
		VideoID:     lesson.VideoID,
		Completed:   true,
		CompletedAt: &completedAt,
	}
	if err := s.progressRepo.MarkCompleted(ctx, record); err != nil {
		return err
	}
	s.logger.Debug("lesson watched", "user", userID.Hex(), "course", courseID.Hex(), "lesson", lesson.ID)
	return nil
}

func (s *progressService) GetWatchedLessonIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	ids, err := s.progressRepo.CompletedLessonIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(ids), nil
}

func (s *progressService) SetLastWatchedLesson(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string) error {
	lesson, err := s.lessonOf(ctx, courseID, lessonID)
	if err != nil {
		return err
	}
	return s.progressRepo.SetLastWatched(ctx, &domain.LastWatchedActivity{
		ID:                  domain.ActivityID(userID, courseID),
		UserID:              userID,
		CourseID:            courseID,
		LastWatchedLessonID: lesson.ID,
		LastWatchedAt:       s.clock().UTC(),
	})
}

func (s *progressService) GetLastWatchedLessonID(ctx context.Context, userID, courseID primitive.ObjectID) (*string, error) {
	activity, err := s.progressRepo.GetLastWatched(ctx, userID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := activity.LastWatchedLessonID
	return &id, nil
}

// UpdateLessonProgress saves the playback offset. It never clears a completion.
func (s *progressService) UpdateLessonProgress(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, seekTo float64) error {
	if math.IsNaN(seekTo) || math.IsInf(seekTo, 0) || seekTo < 0 {
		return validationError("seekTo must be a non-negative number of seconds")
	}
	lesson, err := s.lessonOf(ctx, courseID, lessonID)
	if err != nil {
		return err
	}
	return s.progressRepo.UpsertPosition(ctx, &domain.ProgressRecord{
		ID:       domain.ProgressID(userID, lesson.ID),
		UserID:   userID,
		CourseID: courseID,
		LessonID: lesson.ID,
		VideoID:  lesson.VideoID,
		SeekTo:   seekTo,
	})
}

// GetLessonsWatchedTodayCount counts completions since local midnight.
func (s *progressService) GetLessonsWatchedTodayCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.progressRepo.CountCompletedSince(ctx, userID, s.startOfToday())
}

func (s *progressService) DeleteProgressForUser(ctx context.Context, userID primitive.ObjectID) error {
	return s.progressRepo.DeleteForUser(ctx, userID)
}

// ReportPlayback applies a player state change. Only "ended" completes a lesson;
// "playing" and "paused" snapshot a positive position.
func (s *progressService) ReportPlayback(ctx context.Context, userID, courseID primitive.ObjectID, lessonID string, state domain.PlayerState, position float64) (*PlaybackResult, error) {
	switch state {
	case domain.PlayerEnded:
		if err := s.MarkWatched(ctx, userID, courseID, lessonID); err != nil {
			return nil, err
		}
	case domain.PlayerPlaying, domain.PlayerPaused:
		if position > 0 {
			if err := s.UpdateLessonProgress(ctx, userID, courseID, lessonID, position); err != nil {
				return nil, err
			}
		} else if _, err := s.lessonOf(ctx, courseID, lessonID); err != nil {
			return nil, err
		}
	default:
		return nil, validationError("unknown player state %q", state)
	}

	result := &PlaybackResult{LessonID: lessonID}
	record, err := s.progressRepo.Get(ctx, userID, lessonID)
	if errors.Is(err, repository.ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Completed = record.Completed
	result.SeekTo = record.SeekTo
	return result, nil
}

func (s *progressService) GetResumeState(ctx context.Context, userID, courseID primitive.ObjectID) (*ResumeState, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ResumeState{CourseID: courseID, WatchedLessonIDs: []string{}}
	lastID, err := s.GetLastWatchedLessonID(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if lastID != nil && course.HasLesson(*lastID) {
		state.LessonID = *lastID
	} else if first := course.FirstLesson(); first != nil {
		state.LessonID = first.ID
	}

	if state.LessonID != "" {
		record, err := s.progressRepo.Get(ctx, userID, state.LessonID)
		switch {
		case err == nil:
			state.SeekTo = record.SeekTo
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	watched, err := s.progressRepo.CompletedLessonIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range uniqueSorted(watched) {
		if course.HasLesson(id) {
			state.WatchedLessonIDs = append(state.WatchedLessonIDs, id)
		}
	}
	return state, nil
}

// GetProgressSummary counts completed lessons against every lesson in the catalog.
func (s *progressService) GetProgressSummary(ctx context.Context, userID primitive.ObjectID) (*ProgressSummary, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	watched, err := s.progressRepo.CompletedLessonIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	today, err := s.GetLessonsWatchedTodayCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(courses, watched, today), nil
}

func (s *progressService) GetAllProgress(ctx context.Context) (map[string][]string, error) {
	all, err := s.progressRepo.AllCompleted(ctx)
	if err != nil {
		return nil, err
	}
	for userID, ids := range all {
		all[userID] = uniqueSorted(ids)
	}
	return all, nil
}

func (s *progressService) PruneOrphans(ctx context.Context) (int, error) {
	referenced, err := s.progressRepo.CourseIDs(ctx)
	if err != nil {
		return 0, err
	}
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	existing := make(map[primitive.ObjectID]bool, len(courses))
	for _, c := range courses {
		existing[c.ID] = true
	}

	pruned := 0
	for _, id := range referenced {
		if existing[id] {
			continue
		}
		if err := s.progressRepo.DeleteForCourse(ctx, id); err != nil {
			return pruned, fmt.Errorf("prune course %s: %w", id.Hex(), err)
		}
		s.logger.Info("pruned orphaned progress", "course", id.Hex())
		pruned++
	}
	return pruned, nil
}

// --- Helpers ---

// lessonOf loads the course and checks that lessonID is one of its lessons.
func (s *progressService) lessonOf(ctx context.Context, courseID primitive.ObjectID, lessonID string) (*domain.Lesson, error) {
	if lessonID == "" {
		return nil, validationError("lesson id is required")
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapCourseErr(err)
	}
	lesson := course.FindLesson(lessonID)
	if lesson == nil {
		return nil, ErrLessonNotInCourse
	}
	return lesson, nil
}

func (s *progressService) startOfToday() time.Time {
	return now.With(s.clock().In(s.location)).BeginningOfDay()
}

// summarize only counts watched lessons that still exist in some course.
func summarize(courses []domain.Course, watched []string, today int64) *ProgressSummary {
	done := make(map[string]bool, len(watched))
	for _, id := range watched {
		done[id] = true
	}

	summary := &ProgressSummary{WatchedToday: today}
	for _, c := range courses {
		for _, l := range c.Lessons {
			summary.Total++
			if done[l.ID] {
				summary.Completed++
			}
		}
	}
	summary.Remaining = summary.Total - summary.Completed
	if summary.Total > 0 {
		summary.Percentage = int(math.Round(float64(summary.Completed) * 100 / float64(summary.Total)))
	}
	return summary
}

func uniqueSorted(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
