package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFocusTime(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0m"},
		{0.4, "0m"},
		{0.5, "1m"},
		{45, "45m"},
		{59.4, "59m"},
		{59.7, "60m"},
		{60, "1h"},
		{61, "1h 1m"},
		{90.2, "1h 30m"},
		{119.6, "1h 60m"},
		{120, "2h"},
		{125, "2h 5m"},
		{1500, "25h"},
		{-3, "0m"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FocusTime(tc.minutes), "FocusTime(%v)", tc.minutes)
		})
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 1, Rank(1, 10, 0))
	assert.Equal(t, 10, Rank(1, 10, 9))
	assert.Equal(t, 11, Rank(2, 10, 0))
	assert.Equal(t, 25, Rank(3, 10, 4))

	// ranks are contiguous across page boundaries
	pageSize := 7
	next := 1
	for page := 1; page <= 4; page++ {
		for idx := 0; idx < pageSize; idx++ {
			assert.Equal(t, next, Rank(page, pageSize, idx))
			next++
		}
	}
}

func TestRankBadge(t *testing.T) {
	assert.Equal(t, "🥇", RankBadge(1))
	assert.Equal(t, "🥈", RankBadge(2))
	assert.Equal(t, "🥉", RankBadge(3))
	assert.Equal(t, "#4", RankBadge(4))
	assert.Equal(t, "#11", RankBadge(11))
}

func TestDate(t *testing.T) {
	assert.Equal(t, Dash, Date(nil))
	assert.Equal(t, Dash, Date(&time.Time{}))

	ts := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-03-05", Date(&ts))
}

func TestStrings(t *testing.T) {
	name := "Ada Lovelace"
	blank := "  "

	assert.Equal(t, Dash, OrDash(nil))
	assert.Equal(t, Dash, OrDash(&blank))
	assert.Equal(t, name, OrDash(&name))

	assert.Equal(t, name, DisplayName(&name, "ada@lockme.test"))
	assert.Equal(t, "ada@lockme.test", DisplayName(&blank, "ada@lockme.test"))
	assert.Equal(t, "ada@lockme.test", DisplayName(nil, "ada@lockme.test"))

	assert.Equal(t, "A", Initial("ada"))
	assert.Equal(t, "É", Initial(" élodie"))
	assert.Equal(t, "?", Initial(""))

	assert.Equal(t, "1 member", Members(1))
	assert.Equal(t, "0 members", Members(0))
	assert.Equal(t, "🔥 0d", Streak(0))
	assert.Equal(t, "🔥 12d", Streak(12))
}
