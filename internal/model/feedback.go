package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FeedbackType classifies a translation suggestion.
type FeedbackType string

const (
	FeedbackImprovement FeedbackType = "improvement"
	FeedbackError       FeedbackType = "error"
	FeedbackUnclear     FeedbackType = "unclear"
)

// Valid reports whether t is one of the known feedback types.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackImprovement, FeedbackError, FeedbackUnclear:
		return true
	}
	return false
}

// Feedback and review workflow states.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusApplied  = "applied"
	StatusRejected = "rejected"
	StatusApproved = "approved"
)

// TranslationFeedback is a visitor's suggestion for a translated string.
type TranslationFeedback struct {
	ID             string       `json:"id"                        gorm:"type:varchar(64);primaryKey"`
	Language       string       `json:"language"                  gorm:"type:varchar(8);index"`
	Page           string       `json:"page"`
	TranslationKey string       `json:"translation_key,omitempty"`
	OriginalText   string       `json:"original_text,omitempty"`
	Suggestion     string       `json:"suggestion"`
	Type           FeedbackType `json:"type"                      gorm:"type:varchar(16)"`
	Status         string       `json:"status,omitempty"          gorm:"type:varchar(16);index"`
	UserEmail      string       `json:"user_email,omitempty"`
	CreatedAt      time.Time    `json:"created_at"                gorm:"index"`
	UpdatedAt      time.Time    `json:"updated_at"`
	ReviewedBy     string       `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// TableName pins the hosted table name.
func (TranslationFeedback) TableName() string { return "translation_feedback" }

// FeedbackUpdate lists the fields an admin may change; nil fields are left alone.
type FeedbackUpdate struct {
	Status     *string `json:"status,omitempty"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// Apply merges the update into f and stamps the review time when a reviewer is set.
func (u FeedbackUpdate) Apply(f *TranslationFeedback, now time.Time) {
	if u.Status != nil {
		f.Status = *u.Status
	}
	if u.ReviewedBy != nil {
		f.ReviewedBy = *u.ReviewedBy
		f.ReviewedAt = &now
	}
	if u.Notes != nil {
		f.Notes = *u.Notes
	}
	f.UpdatedAt = now
}

// FeedbackStats aggregates feedback counts.
type FeedbackStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByLanguage map[string]int `json:"byLanguage"`
	ByType     map[string]int `json:"byType"`
}

// TranslationReview is a reviewer-proposed change to a UI or product string.
type TranslationReview struct {
	ID             string     `json:"id"                   gorm:"type:varchar(64);primaryKey"`
	TranslationKey string     `json:"translation_key"`
	Language       string     `json:"language"             gorm:"type:varchar(8)"`
	OldValue       string     `json:"old_value,omitempty"`
	NewValue       string     `json:"new_value"`
	ReviewerEmail  string     `json:"reviewer_email"`
	ReviewType     string     `json:"review_type"          gorm:"type:varchar(16)"`
	Status         string     `json:"status,omitempty"     gorm:"type:varchar(16)"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"           gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

// TableName pins the hosted table name.
func (TranslationReview) TableName() string { return "translation_reviews" }

// QualityReport stores the outcome of a translation quality check.
type QualityReport struct {
	ID          string    `json:"id"          gorm:"type:varchar(64);primaryKey"`
	ReportData  JSONMap   `json:"report_data" gorm:"type:jsonb"`
	TotalIssues int       `json:"total_issues"`
	Errors      int       `json:"errors"`
	Warnings    int       `json:"warnings"`
	Info        int       `json:"info"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// TableName pins the hosted table name.
func (QualityReport) TableName() string { return "translation_quality_reports" }

// ProductReview is a customer review for a catalog product.
type ProductReview struct {
	ID                 string     `json:"id"                           gorm:"type:varchar(64);primaryKey"`
	ProductID          string     `json:"product_id"                   gorm:"type:varchar(128);index"`
	ProductName        string     `json:"product_name"`
	Rating             int        `json:"rating"`
	ProductQuality     *int       `json:"product_quality,omitempty"`
	Freshness          *int       `json:"freshness,omitempty"`
	Delivery           *int       `json:"delivery,omitempty"`
	Title              string     `json:"title,omitempty"`
	ReviewText         string     `json:"review_text"`
	ReviewerName       string     `json:"reviewer_name,omitempty"`
	ReviewerEmail      string     `json:"reviewer_email"`
	IsAnonymous        bool       `json:"is_anonymous"`
	IsVerifiedPurchase bool       `json:"is_verified_purchase"`
	HelpfulCount       int        `json:"helpful_count"`
	Status             string     `json:"status"                       gorm:"type:varchar(16);index"`
	CreatedAt          time.Time  `json:"created_at"                   gorm:"index"`
	UpdatedAt          time.Time  `json:"updated_at"`
	ApprovedBy         string     `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
}

// TableName pins the hosted table name.
func (ProductReview) TableName() string { return "product_reviews" }

// Validate checks the rating ranges and required text.
func (r ProductReview) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if r.ReviewText == "" {
		return fmt.Errorf("review_text is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	for name, v := range map[string]*int{"product_quality": r.ProductQuality, "freshness": r.Freshness, "delivery": r.Delivery} {
		if v != nil && (*v < 1 || *v > 5) {
			return fmt.Errorf("%s must be between 1 and 5", name)
		}
	}
	return nil
}

// JSONMap is a map stored as a JSON document column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonmap: unsupported scan type %T", value)
	}
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("jsonmap: decode: %w", err)
	}
	*m = out
	return nil
}
