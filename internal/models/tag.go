package models

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#3B82F6"

type Tag struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"type:varchar(7);not null;default:'#3B82F6'" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"many2many:task_tag;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TagCount is a tag row annotated with the number of tasks it is attached to.
type TagCount struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TaskCount int64     `json:"task_count"`
}
