package model

import "time"

const (
	UserStatusActive    = "ACTIVE"
	UserStatusInactive  = "INACTIVE"
	UserStatusWithdrawn = "WITHDRAWN"
)

type User struct {
	UUID            string     `db:"uuid" json:"uuid"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Name            string     `db:"name" json:"name"`
	PhoneNumber     *string    `db:"phone_number" json:"phone_number,omitempty"`
	ProfileImageURL *string    `db:"profile_image_url" json:"profile_image_url,omitempty"`
	Status          string     `db:"status" json:"status"`
	MarketingAgreed bool       `db:"marketing_agreed" json:"marketing_agreed"`
	LastLoginAt     *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
}
