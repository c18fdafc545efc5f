package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment hangs off a project directly, independent of pages. It can be
// modified by its author or by the project owner.
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project    *Project  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Content    string    `gorm:"column:content;not null" json:"content"`
	IsResolved bool      `gorm:"column:is_resolved;not null;default:false" json:"is_resolved"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Comment) TableName() string { return "comment" }
