package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OptimizationStatus string

const (
	OptimizationPending  OptimizationStatus = "PENDING"
	OptimizationRevised  OptimizationStatus = "REVISED"
	OptimizationRefined  OptimizationStatus = "REFINED"
	OptimizationApproved OptimizationStatus = "APPROVED"
	OptimizationRejected OptimizationStatus = "REJECTED"
)

// HasDesign reports whether the status implies an optimized design exists.
// REVISED and REFINED are one logical state: REVISED after the first AI pass,
// REFINED after any feedback-driven pass.
func (s OptimizationStatus) HasDesign() bool {
	return s == OptimizationRevised || s == OptimizationRefined || s == OptimizationApproved
}

func (s OptimizationStatus) Terminal() bool {
	return s == OptimizationRejected
}

// Optimization is one AI-assisted design-improvement attempt against a Page.
// OriginalDesign is a snapshot of the page canvas taken at creation time, not
// a live reference. OptimizedDesign stays null until the first AI pass.
type Optimization struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	PageID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"page_id"`
	Page            *Page              `gorm:"constraint:OnDelete:CASCADE;foreignKey:PageID;references:ID" json:"page,omitempty"`
	Status          OptimizationStatus `gorm:"column:status;not null;default:PENDING" json:"status"`
	OriginalDesign  datatypes.JSON     `gorm:"column:original_design;type:jsonb" json:"original_design"`
	OptimizedDesign datatypes.JSON     `gorm:"column:optimized_design;type:jsonb" json:"optimized_design,omitempty"`
	Suggestions     datatypes.JSON     `gorm:"column:suggestions;type:jsonb" json:"suggestions,omitempty"`
	UserFeedback    datatypes.JSON     `gorm:"column:user_feedback;type:jsonb" json:"user_feedback,omitempty"`
	AIAnalysis      string             `gorm:"column:ai_analysis" json:"ai_analysis,omitempty"`
	QualityScore    *int               `gorm:"column:quality_score" json:"quality_score,omitempty"`
	GeneratedCode   datatypes.JSON     `gorm:"column:generated_code;type:jsonb" json:"generated_code,omitempty"`
	Refinements     []Refinement       `gorm:"foreignKey:OptimizationID" json:"refinements,omitempty"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

func (Optimization) TableName() string { return "optimization" }

// UserFeedbackRecord is the shape persisted into Optimization.UserFeedback.
type UserFeedbackRecord struct {
	Feedback  string    `json:"feedback"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}
