package service

import (
	"context"
	"errors"
	"fmt"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"
	"lessonhub/internal/storage"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CourseInput is the admin-submitted course form. Lessons without an ID get a new UUID.
type CourseInput struct {
	Slug        string
	Title       string
	Description string
	Thumbnail   string
	Order       *int // nil appends after the last course
	Lessons     []domain.Lesson
}

// PDFLesson is a PDF Hub entry. URL is either the lesson's link or a presigned download URL.
type PDFLesson struct {
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// CoursePDFs groups the PDF lessons of one course.
type CoursePDFs struct {
	CourseID primitive.ObjectID `json:"courseId"`
	Slug     string             `json:"slug"`
	Title    string             `json:"title"`
	Lessons  []PDFLesson        `json:"lessons"`
}

// PDFUpload describes a pending direct upload to object storage.
type PDFUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SeedResult reports what SeedCourses did.
type SeedResult struct {
	Inserted []string
	Skipped  []string
}

// --- Service Interface ---
type CourseService interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error)
	GetCourseByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	CreateCourse(ctx context.Context, input CourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, id primitive.ObjectID, input CourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	ReorderCourses(ctx context.Context, ids []primitive.ObjectID) error

	ListPDFs(ctx context.Context) ([]CoursePDFs, error)
	RequestPDFUploadURL(ctx context.Context, courseID primitive.ObjectID, lessonID, contentType string) (*PDFUpload, error)
	AttachPDF(ctx context.Context, courseID primitive.ObjectID, lessonID, objectKey string) (*domain.Course, error)

	SeedCourses(ctx context.Context, courses []domain.Course) (*SeedResult, error)
}

// --- Service Implementation ---

// courseService implements the CourseService interface.
type courseService struct {
	courseRepo   repository.CourseRepository
	progressRepo repository.ProgressRepository
	fileStorage  storage.FileStorage // nil when no bucket is configured
	logger       *log.Logger
}

// NewCourseService creates a new instance of courseService. fileStorage may be nil.
func NewCourseService(
	courseRepo repository.CourseRepository,
	progressRepo repository.ProgressRepository,
	fileStorage storage.FileStorage,
	logger *log.Logger,
) CourseService {
	return &courseService{
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

func (s *courseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *courseService) GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	return course, mapCourseErr(err)
}

func (s *courseService) GetCourseByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	return course, mapCourseErr(err)
}

// CreateCourse validates the input and stores a new course.
func (s *courseService) CreateCourse(ctx context.Context, input CourseInput) (*domain.Course, error) {
	course, err := buildCourse(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkLessonIDs(ctx, course); err != nil {
		return nil, err
	}

	if input.Order != nil {
		course.Order = *input.Order
	} else {
		maxOrder, ok, err := s.courseRepo.MaxOrder(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			course.Order = maxOrder + 1
		}
	}

	id, err := s.courseRepo.Create(ctx, course)
	if err != nil {
		return nil, mapCourseErr(err)
	}
	course.ID = id
	s.logger.Info("course created", "id", id.Hex(), "slug", course.Slug)
	return course, nil
}

// UpdateCourse replaces every editable field of the course, including its lesson list.
func (s *courseService) UpdateCourse(ctx context.Context, id primitive.ObjectID, input CourseInput) (*domain.Course, error) {
	existing, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapCourseErr(err)
	}

	course, err := buildCourse(input)
	if err != nil {
		return nil, err
	}
	course.ID = existing.ID
	if err := s.checkLessonIDs(ctx, course); err != nil {
		return nil, err
	}
	course.CreatedAt = existing.CreatedAt
	course.Order = existing.Order
	if input.Order != nil {
		course.Order = *input.Order
	}
	for i := range course.Lessons {
		if old := existing.FindLesson(course.Lessons[i].ID); old != nil {
			course.Lessons[i].PDFObjectKey = old.PDFObjectKey
		}
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, mapCourseErr(err)
	}
	s.releaseDroppedPDFs(ctx, existing, course)

	if dropped := droppedLessonIDs(existing, course); len(dropped) > 0 {
		if err := s.progressRepo.DeleteForLessons(ctx, id, dropped); err != nil {
			s.logger.Error("course updated but progress purge failed", "id", id.Hex(), "lessons", dropped, "err", err)
			return nil, fmt.Errorf("purge progress for dropped lessons of %s: %w", id.Hex(), err)
		}
		s.logger.Info("purged progress of dropped lessons", "id", id.Hex(), "lessons", dropped)
	}
	return course, nil
}

// DeleteCourse removes the course and then every progress row that points at it.
func (s *courseService) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return mapCourseErr(err)
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return mapCourseErr(err)
	}
	if err := s.progressRepo.DeleteForCourse(ctx, id); err != nil {
		s.logger.Error("course deleted but progress purge failed", "id", id.Hex(), "err", err)
		return fmt.Errorf("purge progress for course %s: %w", id.Hex(), err)
	}
	s.releaseDroppedPDFs(ctx, existing, &domain.Course{})
	s.logger.Info("course deleted", "id", id.Hex(), "slug", existing.Slug)
	return nil
}

// ReorderCourses assigns order = position to every course. ids must list each course exactly once.
func (s *courseService) ReorderCourses(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return validationError("course id list is empty")
	}
	err := s.courseRepo.Reorder(ctx, ids)
	if errors.Is(err, repository.ErrReorderInvalid) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return err
}

// ListPDFs returns the courses that have PDF material, keeping only lessons with a PDF.
func (s *courseService) ListPDFs(ctx context.Context) ([]CoursePDFs, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := []CoursePDFs{}
	for _, c := range courses {
		entry := CoursePDFs{CourseID: c.ID, Slug: c.Slug, Title: c.Title}
		for _, l := range c.Lessons {
			if !l.HasPDF() {
				continue
			}
			link := l.PDFURL
			if l.PDFObjectKey != "" && s.fileStorage != nil {
				signed, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, l.PDFObjectKey, storage.DefaultPresignedURLExpiry)
				if err != nil {
					s.logger.Warn("presign pdf failed", "course", c.Slug, "lesson", l.ID, "err", err)
				} else {
					link = signed
				}
			}
			if link == "" {
				continue
			}
			entry.Lessons = append(entry.Lessons, PDFLesson{LessonID: l.ID, Title: l.Title, URL: link})
		}
		if len(entry.Lessons) > 0 {
			result = append(result, entry)
		}
	}
	return result, nil
}

// RequestPDFUploadURL returns a presigned PUT URL for the lesson's PDF.
func (s *courseService) RequestPDFUploadURL(ctx context.Context, courseID primitive.ObjectID, lessonID, contentType string) (*PDFUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if contentType == "" {
		contentType = storage.PDFContentType
	}
	if contentType != storage.PDFContentType {
		return nil, validationError("content type must be %s", storage.PDFContentType)
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapCourseErr(err)
	}
	if !course.HasLesson(lessonID) {
		return nil, ErrLessonNotFound
	}

	objectKey := pdfObjectKey(courseID, lessonID)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &PDFUpload{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// AttachPDF records an uploaded object key on the lesson.
func (s *courseService) AttachPDF(ctx context.Context, courseID primitive.ObjectID, lessonID, objectKey string) (*domain.Course, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	prefix := pdfKeyPrefix(courseID, lessonID)
	if !strings.HasPrefix(objectKey, prefix) {
		return nil, validationError("object key must start with %s", prefix)
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapCourseErr(err)
	}
	lesson := course.FindLesson(lessonID)
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	previous := lesson.PDFObjectKey
	lesson.PDFObjectKey = objectKey
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, mapCourseErr(err)
	}
	if previous != "" && previous != objectKey {
		s.deleteObject(ctx, previous)
	}
	return course, nil
}

// SeedCourses inserts the given courses, skipping slugs that already exist.
func (s *courseService) SeedCourses(ctx context.Context, courses []domain.Course) (*SeedResult, error) {
	result := &SeedResult{}
	for _, c := range courses {
		_, err := s.courseRepo.GetBySlug(ctx, c.Slug)
		if err == nil {
			result.Skipped = append(result.Skipped, c.Slug)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return result, err
		}

		order := c.Order
		created, err := s.CreateCourse(ctx, CourseInput{
			Slug:        c.Slug,
			Title:       c.Title,
			Description: c.Description,
			Thumbnail:   c.Thumbnail,
			Order:       &order,
			Lessons:     c.Lessons,
		})
		if errors.Is(err, ErrCourseConflict) && !errors.Is(err, ErrLessonIDConflict) {
			// Order taken by an admin-created course; append instead.
			created, err = s.CreateCourse(ctx, CourseInput{
				Slug:        c.Slug,
				Title:       c.Title,
				Description: c.Description,
				Thumbnail:   c.Thumbnail,
				Lessons:     c.Lessons,
			})
		}
		if err != nil {
			return result, fmt.Errorf("seed %s: %w", c.Slug, err)
		}
		result.Inserted = append(result.Inserted, created.Slug)
	}
	return result, nil
}

// --- Helpers ---

// buildCourse validates input and produces a course with lesson IDs filled in.
func buildCourse(input CourseInput) (*domain.Course, error) {
	c := &domain.Course{
		Slug:        strings.TrimSpace(input.Slug),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Thumbnail:   strings.TrimSpace(input.Thumbnail),
	}

	switch {
	case !slugPattern.MatchString(c.Slug):
		return nil, validationError("slug must be lower-case letters, digits and single hyphens")
	case c.Title == "":
		return nil, validationError("title is required")
	case c.Description == "":
		return nil, validationError("description is required")
	case !isHTTPURL(c.Thumbnail):
		return nil, validationError("thumbnail must be an absolute http(s) URL")
	case len(input.Lessons) == 0:
		return nil, validationError("a course needs at least one lesson")
	}
	if input.Order != nil && *input.Order < 0 {
		return nil, validationError("order must not be negative")
	}

	seen := make(map[string]bool, len(input.Lessons))
	c.Lessons = make([]domain.Lesson, 0, len(input.Lessons))
	for i, l := range input.Lessons {
		l.ID = strings.TrimSpace(l.ID)
		l.Title = strings.TrimSpace(l.Title)
		l.VideoID = strings.TrimSpace(l.VideoID)
		l.PDFURL = strings.TrimSpace(l.PDFURL)
		l.Duration = strings.TrimSpace(l.Duration)
		l.PDFObjectKey = "" // Only set through AttachPDF

		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if seen[l.ID] {
			return nil, validationError("lesson %d: duplicate lesson id %q", i+1, l.ID)
		}
		seen[l.ID] = true

		if l.Title == "" {
			return nil, validationError("lesson %d: title is required", i+1)
		}
		if l.VideoID == "" {
			return nil, validationError("lesson %d: video id is required", i+1)
		}
		if _, err := domain.ParseDuration(l.Duration); err != nil {
			return nil, validationError("lesson %d: %v", i+1, err)
		}
		if l.PDFURL != "" && !isHTTPURL(l.PDFURL) {
			return nil, validationError("lesson %d: pdf url must be an absolute http(s) URL", i+1)
		}
		c.Lessons = append(c.Lessons, l)
	}
	return c, nil
}

// checkLessonIDs rejects lesson ids that belong to another course. Progress is
// keyed by (user, lesson), so a shared id would mix the progress of two courses.
func (s *courseService) checkLessonIDs(ctx context.Context, course *domain.Course) error {
	others, err := s.courseRepo.List(ctx)
	if err != nil {
		return err
	}
	for i := range others {
		other := &others[i]
		if other.ID == course.ID {
			continue
		}
		for _, l := range course.Lessons {
			if other.HasLesson(l.ID) {
				return fmt.Errorf("%w: %q is a lesson of %s", ErrLessonIDConflict, l.ID, other.Slug)
			}
		}
	}
	return nil
}

func droppedLessonIDs(before, after *domain.Course) []string {
	var dropped []string
	for _, l := range before.Lessons {
		if !after.HasLesson(l.ID) {
			dropped = append(dropped, l.ID)
		}
	}
	return dropped
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func pdfKeyPrefix(courseID primitive.ObjectID, lessonID string) string {
	return path.Join("courses", courseID.Hex(), "lessons", lessonID) + "/"
}

// pdfObjectKey generates a fresh key so replaced uploads never overwrite a cached URL.
func pdfObjectKey(courseID primitive.ObjectID, lessonID string) string {
	return pdfKeyPrefix(courseID, lessonID) + uuid.NewString() + ".pdf"
}

// releaseDroppedPDFs deletes stored PDFs no longer referenced by the updated course.
func (s *courseService) releaseDroppedPDFs(ctx context.Context, before, after *domain.Course) {
	if s.fileStorage == nil {
		return
	}
	kept := map[string]bool{}
	for _, l := range after.Lessons {
		if l.PDFObjectKey != "" {
			kept[l.PDFObjectKey] = true
		}
	}
	for _, l := range before.Lessons {
		if l.PDFObjectKey != "" && !kept[l.PDFObjectKey] {
			s.deleteObject(ctx, l.PDFObjectKey)
		}
	}
}

// deleteObject is best effort; a leftover object only costs storage.
func (s *courseService) deleteObject(ctx context.Context, key string) {
	if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("could not delete stored pdf", "key", key, "err", err)
	}
}

func mapCourseErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrCourseNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrCourseConflict
	default:
		return err
	}
}
