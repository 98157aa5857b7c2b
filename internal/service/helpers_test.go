package service

import (
	"context"
	"lessonhub/internal/domain"
	"lessonhub/internal/logging"
	"lessonhub/internal/testsupport"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	stores   *testsupport.Stores
	files    *testsupport.FileStorage
	courses  CourseService
	users    UserService
	progress *progressService
	routines RoutineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.Discard()
	stores := testsupport.NewStores()
	files := &testsupport.FileStorage{}
	return &fixture{
		stores:   stores,
		files:    files,
		courses:  NewCourseService(stores.Courses, stores.Progress, files, logger),
		users:    NewUserService(stores.Users, stores.Progress, stores.Routines, logger),
		progress: NewProgressService(stores.Courses, stores.Progress, time.UTC, logger).(*progressService),
		routines: NewRoutineService(stores.Routines),
	}
}

func courseInput(slug string, lessonIDs ...string) CourseInput {
	lessons := make([]domain.Lesson, len(lessonIDs))
	for i, id := range lessonIDs {
		lessons[i] = domain.Lesson{ID: id, Title: "Lesson " + id, Duration: "05:00", VideoID: "vid-" + id}
	}
	return CourseInput{
		Slug:        slug,
		Title:       "Course " + slug,
		Description: "About " + slug,
		Thumbnail:   "https://img.test/" + slug + ".png",
		Lessons:     lessons,
	}
}

func (f *fixture) mustCourse(t *testing.T, slug string, lessonIDs ...string) *domain.Course {
	t.Helper()
	c, err := f.courses.CreateCourse(context.Background(), courseInput(slug, lessonIDs...))
	if err != nil {
		t.Fatalf("CreateCourse(%s): %v", slug, err)
	}
	return c
}

func (f *fixture) mustUser(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	u, err := f.users.AddUser(context.Background(), name)
	if err != nil {
		t.Fatalf("AddUser(%s): %v", name, err)
	}
	return u.ID
}
