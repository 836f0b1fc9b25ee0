// Package testutil provides builders and helpers shared by tests.
package testutil

import (
	"fmt"
	"time"

	admin "lockme/internal/admin/models"
	"lockme/internal/devbackend/models"
	id "lockme/pkg/domain"
)

// Email returns a unique deterministic address for index i.
func Email(i int) string {
	return fmt.Sprintf("user%03d@lockme.test", i)
}

// UserBuilder builds development backend users.
type UserBuilder struct {
	user models.User
}

// NewUserBuilder starts from a non-admin Google user created now.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: models.User{
			Email:     "test@lockme.test",
			FullName:  "Test User",
			Provider:  models.ProviderGoogle,
			CreatedAt: time.Now(),
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.FullName = name
	return b
}

func (b *UserBuilder) Admin() *UserBuilder {
	b.user.IsAdmin = true
	return b
}

func (b *UserBuilder) WithFocus(minutes float64, streak int) *UserBuilder {
	b.user.TotalFocusMinutes = minutes
	b.user.CurrentStreak = streak
	return b
}

func (b *UserBuilder) CreatedAt(t time.Time) *UserBuilder {
	b.user.CreatedAt = t
	return b
}

func (b *UserBuilder) Build() models.User {
	return b.user
}

// TribeBuilder builds development backend tribes.
type TribeBuilder struct {
	tribe models.Tribe
}

func NewTribeBuilder() *TribeBuilder {
	return &TribeBuilder{
		tribe: models.Tribe{
			ID:         1,
			Name:       "Test Tribe",
			InviteCode: "TEST01",
			CreatedAt:  time.Now(),
		},
	}
}

func (b *TribeBuilder) WithID(tribeID id.TribeID) *TribeBuilder {
	b.tribe.ID = tribeID
	return b
}

func (b *TribeBuilder) WithName(name string) *TribeBuilder {
	b.tribe.Name = name
	return b
}

func (b *TribeBuilder) Build() models.Tribe {
	return b.tribe
}

// AdminUsers returns n console-side user rows with ids 1..n.
func AdminUsers(n int) []admin.User {
	out := make([]admin.User, n)
	for i := range out {
		out[i] = admin.User{
			ID:       id.UserID(i + 1),
			Email:    Email(i + 1),
			Provider: models.ProviderGoogle,
		}
	}
	return out
}
