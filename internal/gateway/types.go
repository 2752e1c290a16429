package gateway

import (
	"bytes"
	"strconv"
	"time"

	"github.com/viksitkanpur/portal/internal/model"
)

// FlexFloat tolerates the legacy backend habit of serializing coordinates as
// either a JSON number or a quoted string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		s := string(bytes.Trim(b, `"`))
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// User is the backend's user shape.
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Address    string `json:"address,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// Problem is the backend's complaint shape.
type Problem struct {
	ID                 string              `json:"id"`
	UserID             int64               `json:"user_id"`
	UserName           string              `json:"user_name"`
	UserEmail          string              `json:"user_email"`
	ProblemCategories  []string            `json:"problem_categories"`
	OthersText         string              `json:"others_text"`
	Location           string              `json:"location"`
	Latitude           FlexFloat           `json:"latitude"`
	Longitude          FlexFloat           `json:"longitude"`
	UserImageBase64    string              `json:"user_image_base64,omitempty"`
	UserImageMimetype  string              `json:"user_image_mimetype,omitempty"`
	ProofImageBase64   string              `json:"proof_image_base64,omitempty"`
	ProofImageMimetype string              `json:"proof_image_mimetype,omitempty"`
	Status             string              `json:"status"`
	Priority           string              `json:"priority,omitempty"`
	AssignedDepartment string              `json:"assigned_department,omitempty"`
	AssignedWorkerID   *int64              `json:"assigned_worker_id,omitempty"`
	Geotag             *model.Geotag       `json:"geotag,omitempty"`
	StatusHistory      []model.StatusEntry `json:"status_history,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// AuthResult is the backend's response to login, admin login and register.
type AuthResult struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type SubmitPayload struct {
	ProblemCategories []string      `json:"problem_categories"`
	OthersText        string        `json:"others_text"`
	Location          string        `json:"location"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	Priority          string        `json:"priority,omitempty"`
	Geotag            *model.Geotag `json:"geotag,omitempty"`
}

type ProblemUpdate struct {
	Status           string `json:"status,omitempty"`
	AssignedWorkerID *int64 `json:"assigned_worker_id,omitempty"`
	Priority         string `json:"priority,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

type UserUpdate struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
