package models

// SessionStatus names the states of the admin session machine.
type SessionStatus string

const (
	SessionUnauthenticated SessionStatus = "unauthenticated"
	SessionLoading         SessionStatus = "loading"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionExpired         SessionStatus = "expired"
)

// ViewKind names the admin screens.
type ViewKind string

const (
	ViewDashboard   ViewKind = "dashboard"
	ViewUsers       ViewKind = "users"
	ViewTribes      ViewKind = "tribes"
	ViewTribeDetail ViewKind = "tribe_detail"
)
