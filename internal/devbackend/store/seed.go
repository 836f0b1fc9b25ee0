package store

import (
	"context"
	"fmt"
	"time"

	"lockme/internal/devbackend/models"
	id "lockme/pkg/domain"
)

// Seeded accounts.
const (
	SeedAdminEmail  = "admin@lockme.test"
	SeedMemberEmail = "member@lockme.test"
)

var seedNames = []string{
	"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson",
	"Edsger Dijkstra", "Barbara Liskov", "Donald Knuth", "Margaret Hamilton",
	"Ken Thompson", "Frances Allen", "Dennis Ritchie", "Radia Perlman",
	"John McCarthy", "Hedy Lamarr", "Leslie Lamport", "Shafi Goldwasser",
	"Tony Hoare", "Adele Goldberg", "Niklaus Wirth", "Sophie Wilson",
	"Rob Pike", "Lynn Conway",
}

// Seed fills s with a deterministic data set: one admin, one non-admin
// member and a cohort of users spread over four tribes. "Deep Work" has
// enough members to span three pages at the default page size.
func Seed(ctx context.Context, s *Memory, now time.Time) error {
	base := now.Add(-90 * 24 * time.Hour).Truncate(time.Hour)

	users := []models.User{
		{Email: SeedAdminEmail, FullName: "LockMe Admin", IsAdmin: true, TotalFocusMinutes: 3120, CurrentStreak: 30},
		{Email: SeedMemberEmail, FullName: "Regular Member", TotalFocusMinutes: 59.7, CurrentStreak: 1},
	}
	for i, name := range seedNames {
		users = append(users, models.User{
			Email:             fmt.Sprintf("user%02d@lockme.test", i+1),
			FullName:          name,
			TotalFocusMinutes: float64((i*37)%500) + 0.25*float64(i%4),
			CurrentStreak:     (i * 3) % 15,
		})
	}
	// One account without a display name exercises the email fallback.
	users = append(users, models.User{Email: "anonymous@lockme.test", TotalFocusMinutes: 0})

	created := make([]id.UserID, 0, len(users))
	for i, u := range users {
		u.Provider = models.ProviderGoogle
		u.CreatedAt = base.Add(time.Duration(i) * 36 * time.Hour)
		stored, err := s.CreateUser(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		created = append(created, stored.ID)
	}

	tribes := []models.Tribe{
		{ID: 1, Name: "Deep Work", InviteCode: "DEEP01"},
		{ID: 2, Name: "Morning Sprinters", InviteCode: "MORN02"},
		{ID: 3, Name: "Night Owls", InviteCode: "OWLS03"},
		{ID: 4, Name: "Empty Tribe", InviteCode: "NONE04"},
	}
	for i, t := range tribes {
		t.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		if err := s.CreateTribe(ctx, t); err != nil {
			return fmt.Errorf("seed tribe %s: %w", t.Name, err)
		}
	}

	join := func(tribeID id.TribeID, userIDs []id.UserID) error {
		for i, userID := range userIDs {
			err := s.AddMember(ctx, models.Membership{
				TribeID:  tribeID,
				UserID:   userID,
				JoinedAt: base.Add(time.Duration(48+i) * 24 * time.Hour),
			})
			if err != nil {
				return fmt.Errorf("seed membership %s/%s: %w", tribeID, userID, err)
			}
		}
		return nil
	}
	if err := join(1, created); err != nil {
		return err
	}
	if err := join(2, created[2:9]); err != nil {
		return err
	}
	return join(3, created[10:14])
}
