package models

import (
	"time"
)

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Priority    Priority  `gorm:"type:varchar(20);not null" json:"priority"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Tags []Tag `gorm:"many2many:task_tag;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}
