// Package service implements the development backend's auth exchange and
// admin read endpoints on top of the in-memory store.
package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	admin "lockme/internal/admin/models"
	"lockme/internal/devbackend/models"
	"lockme/internal/devbackend/tokens"
	"lockme/internal/platform/logger"
	"lockme/internal/platform/privacy"
	id "lockme/pkg/domain"
	dErrors "lockme/pkg/domain-errors"
)

// Paging limits for tribe detail.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	recentUserLimit = 5
)

// Store is the subset of the store the service reads and writes.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	FindTribe(ctx context.Context, tribeID id.TribeID) (*models.Tribe, error)
	ListTribes(ctx context.Context) ([]models.Tribe, error)
	ListMembers(ctx context.Context, tribeID id.TribeID) ([]models.Membership, error)
	CountMemberships(ctx context.Context) (map[id.UserID]int, error)
}

// TokenIssuer verifies identity tokens and issues access tokens.
type TokenIssuer interface {
	VerifyIdentityToken(token string) (*tokens.IdentityClaims, error)
	IssueAccessToken(ctx context.Context, userID id.UserID, email string, isAdmin bool) (string, error)
}

type Service struct {
	store  Store
	tokens TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides the clock used when registering new users.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: issuer,
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges an identity token for an access token. Unknown emails are
// registered as regular users, so a non-admin login still succeeds with
// is_admin false.
func (s *Service) Login(ctx context.Context, idToken string) (*admin.LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id_token is required")
	}
	identity, err := s.tokens.VerifyIdentityToken(idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByEmail(ctx, identity.Email)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		user, err = s.store.CreateUser(ctx, models.User{
			Email:     strings.TrimSpace(identity.Email),
			FullName:  identity.Name,
			Provider:  models.ProviderGoogle,
			CreatedAt: s.now(),
		})
		if err == nil {
			s.logger.InfoContext(ctx, "registered user on first login",
				"user_id", user.ID,
				"email", privacy.MaskEmail(user.Email),
			)
		}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}

	token, err := s.tokens.IssueAccessToken(ctx, user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "access token issued",
		"user_id", user.ID,
		"is_admin", user.IsAdmin,
	)
	return &admin.LoginResult{AccessToken: token, IsAdmin: user.IsAdmin}, nil
}

// IsAdmin reports whether userID belongs to an admin. Unknown users are not admins.
func (s *Service) IsAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

func (s *Service) Stats(ctx context.Context) (*admin.StatsSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	tribes, err := s.store.ListTribes(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountMemberships(ctx)
	if err != nil {
		return nil, err
	}

	recent := users[:min(len(users), recentUserLimit)]
	return &admin.StatsSummary{
		TotalUsers:  len(users),
		TotalTribes: len(tribes),
		RecentUsers: toAdminUsers(recent, counts),
	}, nil
}

// Users lists every user, newest first.
func (s *Service) Users(ctx context.Context) ([]admin.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountMemberships(ctx)
	if err != nil {
		return nil, err
	}
	return toAdminUsers(users, counts), nil
}

func (s *Service) Tribes(ctx context.Context) ([]admin.Tribe, error) {
	tribes, err := s.store.ListTribes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]admin.Tribe, 0, len(tribes))
	for _, t := range tribes {
		members, err := s.store.ListMembers(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, admin.Tribe{
			ID:          t.ID,
			Name:        t.Name,
			InviteCode:  t.InviteCode,
			CreatedAt:   timePtr(t.CreatedAt),
			MemberCount: len(members),
		})
	}
	return out, nil
}

// TribeDetail returns one page of a tribe's members ranked by focus time.
// A page past the end is returned empty with the real totals.
func (s *Service) TribeDetail(ctx context.Context, tribeID id.TribeID, page, pageSize int) (*admin.TribeDetailPage, error) {
	if page < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "page must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, dErrors.New(dErrors.CodeBadRequest, "page_size must be between 1 and 100")
	}

	tribe, err := s.store.FindTribe(ctx, tribeID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.ListMembers(ctx, tribeID)
	if err != nil {
		return nil, err
	}

	members := make([]admin.TribeMember, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.store.FindUserByID(ctx, m.UserID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "membership references missing user")
		}
		members = append(members, admin.TribeMember{
			UserID:            user.ID,
			UserName:          user.FullName,
			UserEmail:         user.Email,
			AvatarURL:         stringPtr(user.AvatarURL),
			JoinedAt:          timePtr(m.JoinedAt),
			TotalFocusMinutes: user.TotalFocusMinutes,
			CurrentStreak:     user.CurrentStreak,
		})
	}
	slices.SortStableFunc(members, func(a, b admin.TribeMember) int {
		if c := cmp.Compare(b.TotalFocusMinutes, a.TotalFocusMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	// page-1 is bounded before multiplying so huge page numbers cannot overflow.
	start := len(members)
	if page-1 <= len(members)/pageSize {
		start = min((page-1)*pageSize, len(members))
	}
	end := min(start+pageSize, len(members))

	return &admin.TribeDetailPage{
		TribeID:      tribe.ID,
		TribeName:    tribe.Name,
		InviteCode:   tribe.InviteCode,
		CreatedAt:    timePtr(tribe.CreatedAt),
		TotalMembers: len(members),
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   admin.TotalPages(len(members), pageSize),
		Members:      members[start:end],
	}, nil
}

func toAdminUsers(users []models.User, tribeCounts map[id.UserID]int) []admin.User {
	out := make([]admin.User, 0, len(users))
	for _, u := range users {
		out = append(out, admin.User{
			ID:                u.ID,
			Email:             u.Email,
			FullName:          stringPtr(u.FullName),
			AvatarURL:         stringPtr(u.AvatarURL),
			Provider:          u.Provider,
			CreatedAt:         timePtr(u.CreatedAt),
			TribesCount:       tribeCounts[u.ID],
			TotalFocusMinutes: u.TotalFocusMinutes,
			CurrentStreak:     u.CurrentStreak,
		})
	}
	return out
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
