package service

import (
	"context"
	"errors"
	"lessonhub/internal/domain"
	"lessonhub/internal/logging"
	"lessonhub/internal/storage"
	"lessonhub/internal/testsupport"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateCourseAssignsOrderAndLessonIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.mustCourse(t, "first", "1-1")
	if first.Order != 0 {
		t.Fatalf("first course order = %d, want 0", first.Order)
	}

	input := courseInput("second", "")
	input.Lessons = append(input.Lessons, domain.Lesson{Title: "Extra", Duration: "1:00", VideoID: "x"})
	second, err := f.courses.CreateCourse(ctx, input)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if second.Order != 1 {
		t.Errorf("second course order = %d, want 1", second.Order)
	}
	for _, l := range second.Lessons {
		if l.ID == "" {
			t.Fatal("lesson without id after create")
		}
	}
	if second.Lessons[0].ID == second.Lessons[1].ID {
		t.Fatal("generated lesson ids collide")
	}
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mutations := map[string]func(*CourseInput){
		"bad slug":        func(in *CourseInput) { in.Slug = "Not A Slug" },
		"missing title":   func(in *CourseInput) { in.Title = " " },
		"missing desc":    func(in *CourseInput) { in.Description = "" },
		"relative thumb":  func(in *CourseInput) { in.Thumbnail = "/img.png" },
		"no lessons":      func(in *CourseInput) { in.Lessons = nil },
		"bad duration":    func(in *CourseInput) { in.Lessons[0].Duration = "ten" },
		"missing video":   func(in *CourseInput) { in.Lessons[0].VideoID = "" },
		"bad pdf url":     func(in *CourseInput) { in.Lessons[0].PDFURL = "ftp://x" },
		"duplicate ids":   func(in *CourseInput) { in.Lessons[1].ID = in.Lessons[0].ID },
		"negative order":  func(in *CourseInput) { o := -1; in.Order = &o },
		"missing lessonT": func(in *CourseInput) { in.Lessons[1].Title = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := courseInput("valid", "a", "b")
			mutate(&in)
			_, err := f.courses.CreateCourse(ctx, in)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("err = %v, want ErrValidationFailed", err)
			}
		})
	}

	courses, _ := f.courses.ListCourses(ctx)
	if len(courses) != 0 {
		t.Fatalf("invalid input reached the store: %d courses", len(courses))
	}
}

func TestCreateCourseDuplicateSlugConflicts(t *testing.T) {
	f := newFixture(t)
	f.mustCourse(t, "dup", "1")
	_, err := f.courses.CreateCourse(context.Background(), courseInput("dup", "2"))
	if !errors.Is(err, ErrCourseConflict) {
		t.Fatalf("err = %v, want ErrCourseConflict", err)
	}
}

func TestUpdateCourseReplacesLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "edit", "1", "2")

	in := courseInput("edit-renamed", "2", "")
	updated, err := f.courses.UpdateCourse(ctx, c.ID, in)
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Order != c.Order || !updated.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("order/createdAt not preserved: %+v", updated)
	}

	got, err := f.courses.GetCourseBySlug(ctx, "edit-renamed")
	if err != nil {
		t.Fatalf("GetCourseBySlug: %v", err)
	}
	if len(got.Lessons) != 2 || got.Lessons[0].ID != "2" || got.Lessons[1].ID == "" {
		t.Fatalf("lessons = %+v", got.Lessons)
	}
	if _, err := f.courses.GetCourseBySlug(ctx, "edit"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("old slug still resolves: %v", err)
	}

	if _, err := f.courses.UpdateCourse(ctx, primitive.NewObjectID(), in); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("update missing course err = %v", err)
	}
}

func TestReorderCoursesIsPermutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCourse(t, "a", "a1")
	b := f.mustCourse(t, "b", "b1")
	c := f.mustCourse(t, "c", "c1")

	if err := f.courses.ReorderCourses(ctx, []primitive.ObjectID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderCourses: %v", err)
	}
	list, _ := f.courses.ListCourses(ctx)
	var slugs []string
	for i, course := range list {
		if course.Order != i {
			t.Errorf("%s has order %d, want %d", course.Slug, course.Order, i)
		}
		slugs = append(slugs, course.Slug)
	}
	if strings.Join(slugs, ",") != "c,a,b" {
		t.Fatalf("order = %v", slugs)
	}

	bad := [][]primitive.ObjectID{
		{a.ID, b.ID},
		{a.ID, a.ID, b.ID},
		{a.ID, b.ID, primitive.NewObjectID()},
		{},
	}
	for _, ids := range bad {
		if err := f.courses.ReorderCourses(ctx, ids); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ReorderCourses(%d ids) err = %v, want ErrValidationFailed", len(ids), err)
		}
	}
	list, _ = f.courses.ListCourses(ctx)
	if list[0].Slug != "c" {
		t.Fatal("rejected reorder changed the order")
	}
}

func TestDeleteCourseCascadesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.mustCourse(t, "keep", "k1")
	gone := f.mustCourse(t, "gone", "g1", "g2")
	user := f.mustUser(t, "Ana")

	for _, step := range []error{
		f.progress.MarkWatched(ctx, user, gone.ID, "g1"),
		f.progress.SetLastWatchedLesson(ctx, user, gone.ID, "g2"),
		f.progress.MarkWatched(ctx, user, keep.ID, "k1"),
	} {
		if step != nil {
			t.Fatal(step)
		}
	}

	if err := f.courses.DeleteCourse(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	watched, _ := f.progress.GetWatchedLessonIDs(ctx, user)
	if strings.Join(watched, ",") != "k1" {
		t.Fatalf("watched after delete = %v", watched)
	}
	if last, _ := f.progress.GetLastWatchedLessonID(ctx, user, gone.ID); last != nil {
		t.Fatalf("activity survived course delete: %v", *last)
	}
	if err := f.courses.DeleteCourse(ctx, gone.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestDeleteCoursePurgeFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1")
	f.stores.Progress.FailDeletes = errors.New("disk full")

	if err := f.courses.DeleteCourse(ctx, c.ID); err == nil {
		t.Fatal("expected purge error")
	}
	if _, err := f.courses.GetCourseByID(ctx, c.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatal("course should already be gone")
	}

	f.stores.Progress.FailDeletes = nil
	if _, err := f.progress.PruneOrphans(ctx); err != nil {
		t.Fatalf("PruneOrphans: %v", err)
	}
}

func TestListPDFs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := courseInput("with-pdf", "1", "2")
	in.Lessons[1].PDFURL = "https://pdf.test/2"
	withPDF, err := f.courses.CreateCourse(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	f.mustCourse(t, "no-pdf", "3")

	upload, err := f.courses.RequestPDFUploadURL(ctx, withPDF.ID, "1", "")
	if err != nil {
		t.Fatalf("RequestPDFUploadURL: %v", err)
	}
	if _, err := f.courses.AttachPDF(ctx, withPDF.ID, "1", upload.ObjectKey); err != nil {
		t.Fatalf("AttachPDF: %v", err)
	}

	hub, err := f.courses.ListPDFs(ctx)
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	if len(hub) != 1 || hub[0].Slug != "with-pdf" || len(hub[0].Lessons) != 2 {
		t.Fatalf("hub = %+v", hub)
	}
	if got := hub[0].Lessons[0].URL; got != "https://storage.test/download/"+upload.ObjectKey {
		t.Errorf("stored pdf url = %s", got)
	}
	if got := hub[0].Lessons[1].URL; got != "https://pdf.test/2" {
		t.Errorf("linked pdf url = %s", got)
	}
}

func TestPDFUploadRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1")

	if _, err := f.courses.RequestPDFUploadURL(ctx, c.ID, "1", "image/png"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("non-pdf content type err = %v", err)
	}
	if _, err := f.courses.RequestPDFUploadURL(ctx, c.ID, "nope", ""); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("unknown lesson err = %v", err)
	}
	if _, err := f.courses.AttachPDF(ctx, c.ID, "1", "elsewhere/file.pdf"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("foreign key err = %v", err)
	}

	first, _ := f.courses.RequestPDFUploadURL(ctx, c.ID, "1", storage.PDFContentType)
	second, _ := f.courses.RequestPDFUploadURL(ctx, c.ID, "1", storage.PDFContentType)
	if first.ObjectKey == second.ObjectKey {
		t.Fatal("upload keys should be unique")
	}
	if _, err := f.courses.AttachPDF(ctx, c.ID, "1", first.ObjectKey); err != nil {
		t.Fatal(err)
	}
	if _, err := f.courses.AttachPDF(ctx, c.ID, "1", second.ObjectKey); err != nil {
		t.Fatal(err)
	}
	if len(f.files.Deleted) != 1 || f.files.Deleted[0] != first.ObjectKey {
		t.Fatalf("replaced object not deleted: %v", f.files.Deleted)
	}

	// An edit that resubmits the lesson keeps the stored key.
	if _, err := f.courses.UpdateCourse(ctx, c.ID, courseInput("c", "1")); err != nil {
		t.Fatal(err)
	}
	got, _ := f.courses.GetCourseByID(ctx, c.ID)
	if got.Lessons[0].PDFObjectKey != second.ObjectKey {
		t.Fatalf("object key lost on update: %q", got.Lessons[0].PDFObjectKey)
	}
}

func TestPDFStorageDisabled(t *testing.T) {
	stores := testsupport.NewStores()
	svc := NewCourseService(stores.Courses, stores.Progress, nil, logging.Discard())
	_, err := svc.RequestPDFUploadURL(context.Background(), primitive.NewObjectID(), "1", "")
	if !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("err = %v, want ErrStorageDisabled", err)
	}
}

func TestSeedCoursesSkipsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustCourse(t, "existing", "1")

	seed := []domain.Course{
		{Slug: "existing", Title: "E", Description: "E", Thumbnail: "https://t.test/e", Lessons: []domain.Lesson{{ID: "1", Title: "L", Duration: "1", VideoID: "v"}}},
		{Slug: "fresh", Title: "F", Description: "F", Thumbnail: "https://t.test/f", Order: 0, Lessons: []domain.Lesson{{ID: "2", Title: "L", Duration: "1", VideoID: "v"}}},
	}
	result, err := f.courses.SeedCourses(ctx, seed)
	if err != nil {
		t.Fatalf("SeedCourses: %v", err)
	}
	if strings.Join(result.Inserted, ",") != "fresh" || strings.Join(result.Skipped, ",") != "existing" {
		t.Fatalf("result = %+v", result)
	}
	fresh, err := f.courses.GetCourseBySlug(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Order != 1 {
		t.Errorf("seed should append when its order is taken, got %d", fresh.Order)
	}

	again, err := f.courses.SeedCourses(ctx, seed)
	if err != nil || len(again.Inserted) != 0 {
		t.Fatalf("second seed = %+v, %v", again, err)
	}
}

func TestLessonIDsAreUniqueAcrossCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCourse(t, "a", "intro")

	_, err := f.courses.CreateCourse(ctx, courseInput("b", "intro"))
	if !errors.Is(err, ErrLessonIDConflict) || !errors.Is(err, ErrCourseConflict) {
		t.Fatalf("create with another course's lesson id err = %v", err)
	}

	b := f.mustCourse(t, "b", "b-intro")
	if _, err := f.courses.UpdateCourse(ctx, b.ID, courseInput("b", "b-intro", "intro")); !errors.Is(err, ErrLessonIDConflict) {
		t.Fatalf("update with another course's lesson id err = %v", err)
	}
	if _, err := f.courses.UpdateCourse(ctx, a.ID, courseInput("a", "intro")); err != nil {
		t.Fatalf("resubmitting a course's own lessons: %v", err)
	}

	// The store rejects a shared id even when the service check is bypassed.
	shared := &domain.Course{Slug: "c", Title: "C", Order: 9, Lessons: []domain.Lesson{{ID: "intro"}}}
	if _, err := f.stores.Courses.Create(ctx, shared); err == nil {
		t.Fatal("store accepted a lesson id owned by another course")
	}

	user := f.mustUser(t, "Ana")
	if err := f.progress.MarkWatched(ctx, user, a.ID, "intro"); err != nil {
		t.Fatal(err)
	}
	if err := f.progress.MarkWatched(ctx, user, b.ID, "b-intro"); err != nil {
		t.Fatal(err)
	}
	if err := f.courses.DeleteCourse(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	watched, _ := f.progress.GetWatchedLessonIDs(ctx, user)
	if strings.Join(watched, ",") != "intro" {
		t.Fatalf("deleting one course changed another course's progress: %v", watched)
	}
}

func TestUpdateCoursePurgesDroppedLessonProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1", "2")
	other := f.mustCourse(t, "other", "o1")
	user := f.mustUser(t, "Ana")

	for _, step := range []error{
		f.progress.MarkWatched(ctx, user, c.ID, "1"),
		f.progress.UpdateLessonProgress(ctx, user, c.ID, "2", 42),
		f.progress.SetLastWatchedLesson(ctx, user, c.ID, "2"),
		f.progress.MarkWatched(ctx, user, other.ID, "o1"),
	} {
		if step != nil {
			t.Fatal(step)
		}
	}

	if _, err := f.courses.UpdateCourse(ctx, c.ID, courseInput("c", "1")); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if records, activity := f.stores.Progress.Len(); records != 2 || activity != 0 {
		t.Fatalf("after dropping lesson 2: %d records, %d activity rows", records, activity)
	}
	watched, _ := f.progress.GetWatchedLessonIDs(ctx, user)
	if strings.Join(watched, ",") != "1,o1" {
		t.Fatalf("watched = %v", watched)
	}

	f.stores.Progress.FailDeletes = errors.New("disk full")
	if _, err := f.courses.UpdateCourse(ctx, c.ID, courseInput("c", "3")); err == nil {
		t.Fatal("expected purge error to be reported")
	}
}
