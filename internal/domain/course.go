// internal/domain/course.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a catalog entry with its ordered lessons embedded in the same document.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug        string             `bson:"slug" json:"slug"` // Unique, URL-safe, used by the lesson-viewing route
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Lessons     []Lesson           `bson:"lessons" json:"lessons"`
	Order       int                `bson:"order" json:"order"` // Display rank, unique across courses
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Lesson is owned by its parent Course. IDs are only unique within the course.
type Lesson struct {
	ID       string `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Duration string `bson:"duration" json:"duration"` // SS, MM:SS or HH:MM:SS
	VideoID  string `bson:"videoId" json:"videoId"`   // External video platform identifier
	PDFURL   string `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`

	// PDFObjectKey points at a PDF uploaded to object storage, if any.
	PDFObjectKey string `bson:"pdfObjectKey,omitempty" json:"pdfObjectKey,omitempty"`
}

// HasPDF reports whether the lesson carries supplementary material.
func (l *Lesson) HasPDF() bool {
	return l.PDFURL != "" || l.PDFObjectKey != ""
}

// FindLesson returns the lesson with the given ID, or nil.
func (c *Course) FindLesson(lessonID string) *Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return &c.Lessons[i]
		}
	}
	return nil
}

// HasLesson reports whether lessonID belongs to this course.
func (c *Course) HasLesson(lessonID string) bool {
	return c.FindLesson(lessonID) != nil
}

// FirstLesson returns the first lesson of the course, or nil for an empty course.
func (c *Course) FirstLesson() *Lesson {
	if len(c.Lessons) == 0 {
		return nil
	}
	return &c.Lessons[0]
}

// LessonIDs returns the lesson IDs in course order.
func (c *Course) LessonIDs() []string {
	ids := make([]string, len(c.Lessons))
	for i, l := range c.Lessons {
		ids[i] = l.ID
	}
	return ids
}

// TotalDurationSeconds sums the parsed durations of all lessons.
// Lessons with an unparseable duration count as zero.
func (c *Course) TotalDurationSeconds() int {
	total := 0
	for _, l := range c.Lessons {
		secs, err := ParseDuration(l.Duration)
		if err != nil {
			continue
		}
		total += secs
	}
	return total
}
