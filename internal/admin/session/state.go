package session

import (
	"fmt"
	"slices"

	"lockme/internal/admin/models"
)

// transitions lists the allowed moves of the session machine.
//
//	Unauthenticated -> Loading -> Authenticated
//	                          \-> Unauthenticated (+error)
//	Authenticated   -> Expired | Unauthenticated | Loading
//	Expired         -> Loading | Unauthenticated
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionUnauthenticated: {models.SessionLoading, models.SessionUnauthenticated},
	models.SessionLoading:         {models.SessionAuthenticated, models.SessionUnauthenticated, models.SessionExpired},
	models.SessionAuthenticated:   {models.SessionExpired, models.SessionUnauthenticated, models.SessionLoading},
	models.SessionExpired:         {models.SessionLoading, models.SessionUnauthenticated},
}

// CanTransition reports whether the machine may move from one status to another.
func CanTransition(from, to models.SessionStatus) bool {
	return slices.Contains(transitions[from], to)
}

// ErrInvalidTransition is returned when a transition is not in the table.
type ErrInvalidTransition struct {
	From, To models.SessionStatus
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid session transition %s -> %s", e.From, e.To)
}

// Snapshot is an immutable view of the session for rendering.
type Snapshot struct {
	Status models.SessionStatus
	Stats  *models.StatsSummary
	// Message is the user-facing explanation of the last failure, if any.
	Message string
}

// Authenticated reports whether admin views may be shown.
func (s Snapshot) Authenticated() bool {
	return s.Status == models.SessionAuthenticated
}
