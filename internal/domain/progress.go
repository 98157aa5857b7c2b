package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlayerState mirrors the embedded player's state-change events.
type PlayerState string

const (
	PlayerPlaying PlayerState = "playing"
	PlayerPaused  PlayerState = "paused"
	PlayerEnded   PlayerState = "ended" // The only event that completes a lesson
)

// ProgressRecord tracks one user's progress through one lesson.
// At most one record exists per (user, lesson); the ID is derived from both.
type ProgressRecord struct {
	ID          string             `bson:"_id" json:"id"` // ProgressID(userID, lessonID)
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID    primitive.ObjectID `bson:"courseId" json:"courseId"`
	LessonID    string             `bson:"lessonId" json:"lessonId"`
	VideoID     string             `bson:"videoId,omitempty" json:"videoId,omitempty"`
	Completed   bool               `bson:"completed" json:"completed"`
	SeekTo      float64            `bson:"seekTo" json:"seekTo"` // Last playback offset in seconds
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LastWatchedActivity remembers the lesson a user was last on within a course.
type LastWatchedActivity struct {
	ID                  string             `bson:"_id" json:"id"` // ActivityID(userID, courseID)
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID            primitive.ObjectID `bson:"courseId" json:"courseId"`
	LastWatchedLessonID string             `bson:"lastWatchedLessonId" json:"lastWatchedLessonId"`
	LastWatchedAt       time.Time          `bson:"lastWatchedAt" json:"lastWatchedAt"`
}

// ProgressID is the deterministic key of a ProgressRecord.
func ProgressID(userID primitive.ObjectID, lessonID string) string {
	return userID.Hex() + "_" + lessonID
}

// ActivityID is the deterministic key of a LastWatchedActivity.
func ActivityID(userID, courseID primitive.ObjectID) string {
	return userID.Hex() + "_" + courseID.Hex()
}
