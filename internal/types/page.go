package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Page holds one screen of a project. CanvasData is the live canvas document;
// after creation it is only ever rewritten by applying an optimization.
type Page struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project        *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Order          int            `gorm:"column:display_order;not null;default:0" json:"order"`
	CanvasData     datatypes.JSON `gorm:"column:canvas_data;type:jsonb" json:"canvas_data"`
	SourceImageURL string         `gorm:"column:source_image_url" json:"source_image_url,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (Page) TableName() string { return "page" }
