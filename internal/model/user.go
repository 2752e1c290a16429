package model

import "time"

// Roles known to the portal. Everything except citizen is municipal staff.
const (
	RoleCitizen            = "citizen"
	RoleFieldWorker        = "field-worker"
	RoleDepartmentHead     = "department-head"
	RoleDistrictMagistrate = "district-magistrate"
)

// Auth providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Email        string    `gorm:"not null;size:255" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"not null;size:20;default:'password'" json:"provider"`
	ProviderID   string    `gorm:"size:255" json:"providerId,omitempty"`
	Role         string    `gorm:"not null;size:30;default:'citizen'" json:"role"`
	Department   string    `gorm:"size:100" json:"department,omitempty"`
	Address      string    `gorm:"size:500" json:"address,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the role belongs to municipal staff.
func IsStaff(role string) bool {
	switch role {
	case RoleFieldWorker, RoleDepartmentHead, RoleDistrictMagistrate:
		return true
	}
	return false
}
