package models

import (
	"time"
)

// TaskTag is the join row between a task and a tag. The composite primary key
// keeps each (task, tag) pair unique.
type TaskTag struct {
	TaskID    uint64    `gorm:"primarykey" json:"task_id"`
	TagID     uint64    `gorm:"primarykey" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the join table name shared with the many2many relations.
func (TaskTag) TableName() string {
	return "task_tag"
}
