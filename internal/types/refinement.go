package types

import (
	"time"

	"github.com/google/uuid"
)

// Refinement records one feedback-driven change event within an
// optimization's history. Rows are append-only.
type Refinement struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OptimizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"optimization_id"`
	Optimization   *Optimization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OptimizationID;references:ID" json:"optimization,omitempty"`
	Category       string        `gorm:"column:category;not null" json:"category"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
}

func (Refinement) TableName() string { return "refinement" }
