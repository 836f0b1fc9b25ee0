// Package models holds the development backend's records. They are the
// server-side originals of the snapshots the admin console displays.
package models

import (
	"time"

	id "lockme/pkg/domain"
)

// Provider names the identity provider a user signed up with.
const ProviderGoogle = "google"

type User struct {
	ID                id.UserID
	Email             string
	FullName          string
	AvatarURL         string
	Provider          string
	IsAdmin           bool
	CreatedAt         time.Time
	TotalFocusMinutes float64
	CurrentStreak     int
}

type Tribe struct {
	ID         id.TribeID
	Name       string
	InviteCode string
	CreatedAt  time.Time
}

// Membership links a user to a tribe.
type Membership struct {
	TribeID  id.TribeID
	UserID   id.UserID
	JoinedAt time.Time
}
