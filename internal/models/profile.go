package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProfileStatus string

const (
	ProfileInProgress ProfileStatus = "in-progress"
	ProfileComplete   ProfileStatus = "complete"
)

type SectionStatus string

const (
	SectionNotStarted SectionStatus = "not-started"
	SectionInProgress SectionStatus = "in-progress"
	SectionComplete   SectionStatus = "complete"
)

// Section is one genius element of a profile. Status only moves forward:
// not-started -> in-progress -> complete. Description is written once, when
// the section completes.
type Section struct {
	Title       string        `json:"title"`
	Status      SectionStatus `json:"status"`
	Description string        `json:"description,omitempty"`
}

type Profile struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	StudentName string `gorm:"column:student_name;type:text" json:"student_name"`
	GradeLevel  string `gorm:"column:grade_level;type:text" json:"grade_level"`
	Age         *int   `gorm:"column:age" json:"age,omitempty"`
	School      string `gorm:"column:school;type:text" json:"school,omitempty"`

	// parent|guardian|grandparent|caregiver|educator|other
	Relationship string `gorm:"column:relationship;type:text" json:"relationship"`

	AccessCode          string    `gorm:"column:access_code;type:text;uniqueIndex" json:"access_code"`
	AccessCodeExpiresAt time.Time `gorm:"column:access_code_expires_at;type:timestamptz" json:"access_code_expires_at"`

	// PercentComplete is always recomputed from Sections, never patched on
	// its own.
	PercentComplete int           `gorm:"column:percent_complete" json:"percent_complete"`
	Status          ProfileStatus `gorm:"column:status;type:text" json:"status"`

	Sections datatypes.JSONType[[]Section] `gorm:"column:sections;type:jsonb" json:"sections"`

	TeacherEmail string `gorm:"column:teacher_email;type:text" json:"teacher_email,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// FindSection returns the section with the given title, or nil.
func FindSection(sections []Section, title string) *Section {
	for i := range sections {
		if sections[i].Title == title {
			return &sections[i]
		}
	}
	return nil
}
