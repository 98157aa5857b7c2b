package domain

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleCourse() Course {
	return Course{
		Slug: "intro",
		Lessons: []Lesson{
			{ID: "1-1", Duration: "10:00"},
			{ID: "1-2", Duration: "bogus", PDFURL: "https://example.com/a.pdf"},
			{ID: "1-3", Duration: "00:30"},
		},
	}
}

func TestCourseLessonLookup(t *testing.T) {
	c := sampleCourse()
	if !c.HasLesson("1-2") || c.HasLesson("2-1") {
		t.Fatal("HasLesson mismatch")
	}
	if l := c.FindLesson("1-3"); l == nil || l.Duration != "00:30" {
		t.Fatalf("FindLesson(1-3) = %+v", l)
	}
	if f := c.FirstLesson(); f == nil || f.ID != "1-1" {
		t.Fatalf("FirstLesson = %+v", f)
	}
	if got := strings.Join(c.LessonIDs(), ","); got != "1-1,1-2,1-3" {
		t.Fatalf("LessonIDs = %s", got)
	}
	if (&Course{}).FirstLesson() != nil {
		t.Fatal("empty course should have no first lesson")
	}
}

func TestCourseTotalDurationSkipsInvalid(t *testing.T) {
	c := sampleCourse()
	if got := c.TotalDurationSeconds(); got != 630 {
		t.Fatalf("TotalDurationSeconds = %d, want 630", got)
	}
}

func TestLessonHasPDF(t *testing.T) {
	c := sampleCourse()
	if c.Lessons[0].HasPDF() || !c.Lessons[1].HasPDF() {
		t.Fatal("HasPDF mismatch")
	}
	stored := Lesson{PDFObjectKey: "courses/x/lessons/y.pdf"}
	if !stored.HasPDF() {
		t.Fatal("object key should count as a PDF")
	}
}

func TestCompositeKeys(t *testing.T) {
	u, _ := primitive.ObjectIDFromHex("64b7f0c2a1b2c3d4e5f60718")
	c, _ := primitive.ObjectIDFromHex("64b7f0c2a1b2c3d4e5f60719")
	if got := ProgressID(u, "1-1"); got != "64b7f0c2a1b2c3d4e5f60718_1-1" {
		t.Errorf("ProgressID = %s", got)
	}
	if got := ActivityID(u, c); got != "64b7f0c2a1b2c3d4e5f60718_64b7f0c2a1b2c3d4e5f60719" {
		t.Errorf("ActivityID = %s", got)
	}
}

func TestDefaultAvatarURL(t *testing.T) {
	if got := DefaultAvatarURL("  alice"); got != "https://placehold.co/100x100.png?text=A" {
		t.Errorf("DefaultAvatarURL = %s", got)
	}
	if got := DefaultAvatarURL(""); got != "https://placehold.co/100x100.png?text=" {
		t.Errorf("DefaultAvatarURL(empty) = %s", got)
	}
}
