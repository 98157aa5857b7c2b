package service

import (
	"context"
	"errors"
	"lessonhub/internal/domain"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMarkWatchedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1-1", "1-2")
	user := f.mustUser(t, "Ana")

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.progress.clock = func() time.Time { return first }
	if err := f.progress.MarkWatched(ctx, user, c.ID, "1-1"); err != nil {
		t.Fatal(err)
	}
	f.progress.clock = func() time.Time { return first.Add(time.Hour) }
	if err := f.progress.MarkWatched(ctx, user, c.ID, "1-1"); err != nil {
		t.Fatal(err)
	}

	records, _ := f.stores.Progress.Len()
	if records != 1 {
		t.Fatalf("got %d records, want 1", records)
	}
	rec, err := f.stores.Progress.Get(ctx, user, "1-1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Completed || rec.CompletedAt == nil || !rec.CompletedAt.Equal(first) {
		t.Fatalf("record = %+v, completedAt should stay at first completion", rec)
	}
	if rec.VideoID != "vid-1-1" {
		t.Errorf("videoId = %q", rec.VideoID)
	}

	ids, _ := f.progress.GetWatchedLessonIDs(ctx, user)
	if strings.Join(ids, ",") != "1-1" {
		t.Fatalf("watched = %v", ids)
	}
}

func TestLessonMustBelongToCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCourse(t, "a", "a-1")
	f.mustCourse(t, "b", "b-1")
	user := f.mustUser(t, "Ana")

	if err := f.progress.SetLastWatchedLesson(ctx, user, a.ID, "b-1"); !errors.Is(err, ErrLessonNotInCourse) {
		t.Errorf("SetLastWatchedLesson err = %v", err)
	}
	if err := f.progress.MarkWatched(ctx, user, a.ID, "b-1"); !errors.Is(err, ErrLessonNotInCourse) {
		t.Errorf("MarkWatched err = %v", err)
	}
	if err := f.progress.UpdateLessonProgress(ctx, user, a.ID, "b-1", 10); !errors.Is(err, ErrLessonNotInCourse) {
		t.Errorf("UpdateLessonProgress err = %v", err)
	}
	if err := f.progress.MarkWatched(ctx, user, primitive.NewObjectID(), "a-1"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("missing course err = %v", err)
	}
}

func TestLastWatchedRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1", "2")
	user := f.mustUser(t, "Ana")

	last, err := f.progress.GetLastWatchedLessonID(ctx, user, c.ID)
	if err != nil || last != nil {
		t.Fatalf("before set = %v, %v", last, err)
	}
	if err := f.progress.SetLastWatchedLesson(ctx, user, c.ID, "1"); err != nil {
		t.Fatal(err)
	}
	if err := f.progress.SetLastWatchedLesson(ctx, user, c.ID, "2"); err != nil {
		t.Fatal(err)
	}
	last, err = f.progress.GetLastWatchedLessonID(ctx, user, c.ID)
	if err != nil || last == nil || *last != "2" {
		t.Fatalf("after set = %v, %v", last, err)
	}
	_, activity := f.stores.Progress.Len()
	if activity != 1 {
		t.Fatalf("got %d activity rows, want 1", activity)
	}
}

func TestUpdateLessonProgressNeverClearsCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1", "2")
	user := f.mustUser(t, "Ana")

	if err := f.progress.UpdateLessonProgress(ctx, user, c.ID, "2", 42.5); err != nil {
		t.Fatal(err)
	}
	rec, _ := f.stores.Progress.Get(ctx, user, "2")
	if rec.Completed || rec.SeekTo != 42.5 {
		t.Fatalf("new position record = %+v", rec)
	}

	if err := f.progress.MarkWatched(ctx, user, c.ID, "1"); err != nil {
		t.Fatal(err)
	}
	if err := f.progress.UpdateLessonProgress(ctx, user, c.ID, "1", 12); err != nil {
		t.Fatal(err)
	}
	rec, _ = f.stores.Progress.Get(ctx, user, "1")
	if !rec.Completed || rec.SeekTo != 12 {
		t.Fatalf("completed record after position update = %+v", rec)
	}

	if err := f.progress.UpdateLessonProgress(ctx, user, c.ID, "1", -1); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("negative seek err = %v", err)
	}
}

func TestWatchedTodayUsesLocalMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.FixedZone("UTC+5", 5*3600)
	f.progress.location = loc
	c := f.mustCourse(t, "c", "1", "2", "3")
	user := f.mustUser(t, "Ana")

	midnight := time.Date(2024, 5, 10, 0, 0, 0, 0, loc)
	at := func(ts time.Time, lesson string) {
		f.progress.clock = func() time.Time { return ts }
		if err := f.progress.MarkWatched(ctx, user, c.ID, lesson); err != nil {
			t.Fatal(err)
		}
	}
	at(midnight.Add(-time.Minute), "1") // yesterday, local
	at(midnight, "2")                   // boundary is inclusive
	at(midnight.Add(20*time.Hour), "3")

	f.progress.clock = func() time.Time { return midnight.Add(23 * time.Hour) }
	n, err := f.progress.GetLessonsWatchedTodayCount(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("watched today = %d, want 2", n)
	}
}

func TestReportPlayback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1")
	user := f.mustUser(t, "Ana")

	res, err := f.progress.ReportPlayback(ctx, user, c.ID, "1", domain.PlayerPaused, 30)
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed || res.SeekTo != 30 {
		t.Fatalf("paused = %+v", res)
	}

	res, err = f.progress.ReportPlayback(ctx, user, c.ID, "1", domain.PlayerPlaying, 0)
	if err != nil || res.SeekTo != 30 {
		t.Fatalf("zero position should not overwrite: %+v, %v", res, err)
	}

	res, err = f.progress.ReportPlayback(ctx, user, c.ID, "1", domain.PlayerEnded, 300)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed {
		t.Fatalf("ended = %+v", res)
	}

	if _, err := f.progress.ReportPlayback(ctx, user, c.ID, "1", "buffering", 1); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("unknown state err = %v", err)
	}
}

func TestGetResumeState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1", "2", "3")
	other := f.mustCourse(t, "other", "9")
	user := f.mustUser(t, "Ana")

	state, err := f.progress.GetResumeState(ctx, user, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.LessonID != "1" || state.SeekTo != 0 || len(state.WatchedLessonIDs) != 0 {
		t.Fatalf("fresh state = %+v", state)
	}

	_ = f.progress.MarkWatched(ctx, user, c.ID, "1")
	_ = f.progress.MarkWatched(ctx, user, other.ID, "9")
	_ = f.progress.SetLastWatchedLesson(ctx, user, c.ID, "2")
	_ = f.progress.UpdateLessonProgress(ctx, user, c.ID, "2", 75)

	state, err = f.progress.GetResumeState(ctx, user, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.LessonID != "2" || state.SeekTo != 75 || strings.Join(state.WatchedLessonIDs, ",") != "1" {
		t.Fatalf("state = %+v", state)
	}

	missing, err := f.progress.GetResumeState(ctx, user, primitive.NewObjectID())
	if err != nil || missing != nil {
		t.Fatalf("missing course = %+v, %v", missing, err)
	}
}

func TestGetProgressSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustCourse(t, "a", "a1", "a2")
	f.mustCourse(t, "b", "b1")
	user := f.mustUser(t, "Ana")

	_ = f.progress.MarkWatched(ctx, user, a.ID, "a1")
	summary, err := f.progress.GetProgressSummary(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	want := ProgressSummary{Completed: 1, Total: 3, Remaining: 2, Percentage: 33, WatchedToday: 1}
	if *summary != want {
		t.Fatalf("summary = %+v, want %+v", *summary, want)
	}
}

func TestGetAllProgressAndDeleteForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1", "2")
	ana := f.mustUser(t, "Ana")
	bo := f.mustUser(t, "Bo")

	_ = f.progress.MarkWatched(ctx, ana, c.ID, "2")
	_ = f.progress.MarkWatched(ctx, ana, c.ID, "1")
	_ = f.progress.MarkWatched(ctx, bo, c.ID, "1")
	_ = f.progress.UpdateLessonProgress(ctx, bo, c.ID, "2", 5)

	all, err := f.progress.GetAllProgress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(all[ana.Hex()], ",") != "1,2" || strings.Join(all[bo.Hex()], ",") != "1" {
		t.Fatalf("all = %v", all)
	}

	if err := f.progress.DeleteProgressForUser(ctx, ana); err != nil {
		t.Fatal(err)
	}
	all, _ = f.progress.GetAllProgress(ctx)
	if _, ok := all[ana.Hex()]; ok {
		t.Fatal("ana's progress survived")
	}
	if len(all[bo.Hex()]) != 1 {
		t.Fatal("bo's progress was touched")
	}
}

func TestPruneOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.mustCourse(t, "c", "1")
	user := f.mustUser(t, "Ana")
	_ = f.progress.MarkWatched(ctx, user, c.ID, "1")

	// Simulate a delete whose purge never ran.
	if err := f.stores.Courses.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	n, err := f.progress.PruneOrphans(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PruneOrphans = %d, %v", n, err)
	}
	if records, _ := f.stores.Progress.Len(); records != 0 {
		t.Fatalf("%d records left", records)
	}
}
