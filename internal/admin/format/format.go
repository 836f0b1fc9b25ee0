// Package format renders admin values for display.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Dash stands in for missing values.
const Dash = "-"

// round rounds half away from zero for the non-negative values used here.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// FocusTime renders accumulated focus minutes as "Nm" below an hour and
// "Xh Ym" (or "Xh" on the hour) above it. Minutes are rounded after the hour
// split, so 59.7 renders as "60m" and 119.6 as "1h 60m".
func FocusTime(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", int64(round(minutes)))
	}
	hours := int64(math.Floor(minutes / 60))
	rest := int64(round(math.Mod(minutes, 60)))
	if rest > 0 {
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
	return fmt.Sprintf("%dh", hours)
}

// Rank is the 1-based position of the idx-th row on page across all pages.
func Rank(page, pageSize, idx int) int {
	return (page-1)*pageSize + idx + 1
}

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// RankBadge renders the top three ranks as medals and the rest as "#N".
func RankBadge(rank int) string {
	if m, ok := medals[rank]; ok {
		return m
	}
	return fmt.Sprintf("#%d", rank)
}

// Date renders t as a local calendar date, or Dash when unknown.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Dash
	}
	return t.Local().Format(time.DateOnly)
}

// OrDash dereferences s, substituting Dash for nil or blank values.
func OrDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Dash
	}
	return *s
}

// DisplayName prefers the full name and falls back to the email address.
func DisplayName(fullName *string, email string) string {
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		return *fullName
	}
	return email
}

// Initial is the upper-cased first letter of name, used as an avatar placeholder.
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Members renders a member count with the right plural.
func Members(n int) string {
	if n == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%d members", n)
}

// Streak renders a day streak.
func Streak(days int) string {
	return fmt.Sprintf("🔥 %dd", days)
}
