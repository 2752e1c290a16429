package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Wire statuses. The frontend-facing names (pending/in-progress/resolved) are
// the portal package's concern; the rows keep the legacy backend vocabulary.
const (
	StatusNotCompleted = "not completed"
	StatusInProgress   = "in-progress"
	StatusCompleted    = "completed"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Problem is a citizen grievance as stored by the backend.
type Problem struct {
	ID                 string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID             int64          `gorm:"not null;index" json:"user_id"`
	UserName           string         `gorm:"size:255" json:"user_name"`
	UserEmail          string         `gorm:"size:255" json:"user_email"`
	ProblemCategories  pq.StringArray `gorm:"type:text[]" json:"problem_categories"`
	OthersText         string         `gorm:"type:text" json:"others_text"`
	Location           string         `gorm:"size:500" json:"location"`
	Latitude           float64        `json:"latitude"`
	Longitude          float64        `json:"longitude"`
	UserImageBase64    string         `gorm:"type:text" json:"user_image_base64,omitempty"`
	UserImageMimetype  string         `gorm:"size:50" json:"user_image_mimetype,omitempty"`
	ProofImageBase64   string         `gorm:"type:text" json:"proof_image_base64,omitempty"`
	ProofImageMimetype string         `gorm:"size:50" json:"proof_image_mimetype,omitempty"`
	Status             string         `gorm:"not null;size:20;default:'not completed';index" json:"status"`
	Priority           string         `gorm:"size:10" json:"priority,omitempty"`
	AssignedDepartment string         `gorm:"size:100;index" json:"assigned_department,omitempty"`
	AssignedWorkerID   *int64         `json:"assigned_worker_id,omitempty"`
	Geotag             datatypes.JSON `json:"geotag,omitempty"`
	StatusHistory      datatypes.JSON `json:"status_history,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Problem) TableName() string {
	return "problems"
}

// StatusEntry is one row of a problem's append-only status log,
// stored inside the status_history JSON column.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
	Notes     string    `json:"notes,omitempty"`
}

// Geotag captures where and by whom a complaint photo was taken.
type Geotag struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	Address    string    `json:"address,omitempty"`
	CapturedBy string    `json:"capturedBy,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
	Device     string    `json:"device,omitempty"`
}

var statusRank = map[string]int{
	StatusNotCompleted: 0,
	StatusInProgress:   1,
	StatusCompleted:    2,
}

// CanTransition reports whether a status change moves forward.
// Same-status updates are allowed so that note-only edits pass through.
func CanTransition(from, to string) bool {
	fr, ok := statusRank[from]
	if !ok {
		fr = 0
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr >= fr
}
