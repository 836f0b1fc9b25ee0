// Package models holds the transient admin snapshots decoded from the
// backend. The console owns no authoritative copy and never writes back.
package models

import (
	"time"

	id "lockme/pkg/domain"
)

// StatsSummary is the /admin/stats payload. It doubles as the session probe result.
type StatsSummary struct {
	TotalUsers  int    `json:"total_users"`
	TotalTribes int    `json:"total_tribes"`
	RecentUsers []User `json:"recent_users,omitempty"`
}

// User is one row of /admin/users.
type User struct {
	ID                id.UserID  `json:"id"`
	Email             string     `json:"email"`
	FullName          *string    `json:"full_name"`
	AvatarURL         *string    `json:"avatar_url"`
	Provider          string     `json:"provider"`
	CreatedAt         *time.Time `json:"created_at"`
	TribesCount       int        `json:"tribes_count"`
	TotalFocusMinutes float64    `json:"total_focus_minutes"`
	CurrentStreak     int        `json:"current_streak"`
}

// Tribe is one row of /admin/tribes.
type Tribe struct {
	ID          id.TribeID `json:"id"`
	Name        string     `json:"name"`
	InviteCode  string     `json:"invite_code"`
	CreatedAt   *time.Time `json:"created_at"`
	MemberCount int        `json:"member_count"`
}

// TribeMember is a member entry on a tribe detail page.
type TribeMember struct {
	UserID            id.UserID  `json:"user_id"`
	UserName          string     `json:"user_name"`
	UserEmail         string     `json:"user_email"`
	AvatarURL         *string    `json:"avatar_url"`
	JoinedAt          *time.Time `json:"joined_at"`
	TotalFocusMinutes float64    `json:"total_focus_minutes"`
	CurrentStreak     int        `json:"current_streak"`
}

// TribeDetailPage is one page of /admin/tribes/{id}.
type TribeDetailPage struct {
	TribeID      id.TribeID    `json:"tribe_id"`
	TribeName    string        `json:"tribe_name"`
	InviteCode   string        `json:"invite_code"`
	CreatedAt    *time.Time    `json:"created_at"`
	TotalMembers int           `json:"total_members"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	Members      []TribeMember `json:"members"`
}

// LoginResult is the /auth/google exchange response.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	IsAdmin     bool   `json:"is_admin"`
}

// TotalPages returns ceil(total/pageSize), or 0 when pageSize is not positive.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
