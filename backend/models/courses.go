package models

import "time"

type Course struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Category    string    `gorm:"index" json:"category"`
	Thumbnail   Asset     `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`
	CreatedBy   string    `json:"createdBy"`

	Lectures     []Lecture `gorm:"constraint:OnDelete:CASCADE;" json:"lectures"`
	LectureCount int       `gorm:"not null" json:"numberOfLectures"`

	// Derived from the enrollments table on read.
	EnrolledStudents []uint `gorm:"-" json:"enrolledStudents"`

	// Version is bumped on every write and used as an optimistic concurrency token.
	Version int `gorm:"not null" json:"version"`
}

type Lecture struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	CourseID    uint      `gorm:"index;not null" json:"courseId"`
	Position    int       `gorm:"not null" json:"position"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Video       Asset     `gorm:"embedded;embeddedPrefix:video_" json:"lecture"`
}

// Enrollment is the single source of truth for course membership.
type Enrollment struct {
	CourseID  uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

// All lists every model the schema migration must know about.
func All() []any {
	return []any{
		&User{},
		&Course{},
		&Lecture{},
		&Enrollment{},
		&RevokedToken{},
		&ContactMessage{},
	}
}
