package types

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "DRAFT"
	ProjectAnalyzed  ProjectStatus = "ANALYZED"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Project is the root of the ownership chain: every Page, Optimization and
// Refinement resolves back to Project.UserID. UserID is immutable after
// creation; there is no reassignment operation.
type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	Description string        `gorm:"column:description" json:"description"`
	Status      ProjectStatus `gorm:"column:status;not null;default:DRAFT" json:"status"`
	Pages       []Page        `gorm:"foreignKey:ProjectID" json:"pages,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "project" }
