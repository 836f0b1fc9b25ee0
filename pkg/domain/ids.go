// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"

	dErrors "lockme/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TribeID is expected.
// Backend identifiers are positive integers; zero means "absent".
type (
	UserID  int64
	TribeID int64
)

// Parse functions - use at trust boundaries (CLI args, URL params).

func ParseUserID(s string) (UserID, error) {
	id, err := parseInt(s, "user ID")
	return UserID(id), err
}

func ParseTribeID(s string) (TribeID, error) {
	id, err := parseInt(s, "tribe ID")
	return TribeID(id), err
}

// String methods - for logging and URL building.

func (id UserID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id TribeID) String() string { return strconv.FormatInt(int64(id), 10) }

// IsNil methods - check for the zero value.

func (id UserID) IsNil() bool  { return id == 0 }
func (id TribeID) IsNil() bool { return id == 0 }

func parseInt(s, label string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must be positive")
	}
	return v, nil
}
