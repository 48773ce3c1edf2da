package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a calendar entry for the cohort.
type Event struct {
	gorm.Model
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Location    string     `json:"location" gorm:"size:200"`
	StartsAt    time.Time  `json:"startsAt" gorm:"not null;index"`
	EndsAt      *time.Time `json:"endsAt"`
	CreatedBy   uint       `json:"createdBy" gorm:"index"`
}
