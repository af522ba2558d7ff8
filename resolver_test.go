package kaimono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWindow(t *testing.T) {
	floor := MustDate("2018-01-01")
	today := MustDate("2021-11-09")

	tests := []struct {
		name       string
		mostRecent string // "" for an empty store
		wantStart  string
		wantEnd    string
		wantOK     bool
	}{
		{
			name:       "empty store starts at the floor date",
			mostRecent: "",
			wantStart:  "2018-01-01",
			wantEnd:    "2021-11-08",
			wantOK:     true,
		},
		{
			name:       "persisted record starts the day after it",
			mostRecent: "2021-11-01",
			wantStart:  "2021-11-02",
			wantEnd:    "2021-11-08",
			wantOK:     true,
		},
		{
			name:       "one day behind yields a single-day window",
			mostRecent: "2021-11-07",
			wantStart:  "2021-11-08",
			wantEnd:    "2021-11-08",
			wantOK:     true,
		},
		{
			name:       "synced through yesterday yields nothing",
			mostRecent: "2021-11-08",
			wantOK:     false,
		},
		{
			name:       "record dated today yields nothing",
			mostRecent: "2021-11-09",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mostRecent *Date
			if tt.mostRecent != "" {
				d := MustDate(tt.mostRecent)
				mostRecent = &d
			}

			window, ok := resolveWindow(mostRecent, floor, today)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantStart, window.Start.String())
			assert.Equal(t, tt.wantEnd, window.End.String())
			assert.NoError(t, window.ValidateForFetch(today))
		})
	}
}

// The resolved window must never re-request a covered date and must never
// reach today, for any persisted date before today.
func TestResolveWindowNeverOverlapsOrReachesToday(t *testing.T) {
	floor := MustDate("2018-01-01")
	today := MustDate("2021-11-09")

	for d := floor; d.Before(today); d = d.AddDays(30) {
		recent := d
		window, ok := resolveWindow(&recent, floor, today)
		if !ok {
			continue
		}
		assert.True(t, window.Start.After(recent), "start %s must be after %s", window.Start, recent)
		assert.True(t, window.End.Before(today), "end %s must be before today", window.End)
	}
}
