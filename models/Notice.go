package models

import "gorm.io/gorm"

// Notice is a board announcement posted by an admin.
type Notice struct {
	gorm.Model
	Title    string `json:"title" gorm:"size:200;not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
	Category string `json:"category" gorm:"size:40;index"`
	Pinned   bool   `json:"pinned" gorm:"default:false;index"`
	PostedBy uint   `json:"postedBy" gorm:"index"`
}
