package kaimono

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-11-08")
	require.NoError(t, err)
	assert.Equal(t, "2021-11-08", d.String())

	_, err = ParseDate("08/11/2021")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateAddDays(t *testing.T) {
	tests := []struct {
		name string
		date string
		days int
		want string
	}{
		{"next day", "2021-11-08", 1, "2021-11-09"},
		{"previous day", "2021-11-08", -1, "2021-11-07"},
		{"month rollover", "2021-10-31", 1, "2021-11-01"},
		{"year rollover", "2021-12-31", 1, "2022-01-01"},
		{"leap day", "2020-02-28", 1, "2020-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustDate(tt.date).AddDays(tt.days).String())
		})
	}
}

func TestDateComparisons(t *testing.T) {
	a := MustDate("2021-11-07")
	b := MustDate("2021-11-08")

	assert.True(t, b.After(a))
	assert.True(t, a.Before(b))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(MustDate("2021-11-07")))
	assert.True(t, Date{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestDateJSONRoundTrip(t *testing.T) {
	rec := RawRecord{Hash: "abc", Name: "widget", Price: 1200, PurchasedAt: MustDate("2021-11-08")}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"purchased_at":"2021-11-08"`)

	var decoded RawRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.PurchasedAt.Equal(rec.PurchasedAt))
}

func TestNewRangeRejectsInverted(t *testing.T) {
	_, err := NewRange(MustDate("2021-11-08"), MustDate("2021-11-07"))
	require.Error(t, err)

	var ire *InvalidRangeError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, "start after end", ire.Reason)

	r, err := NewRange(MustDate("2021-11-07"), MustDate("2021-11-07"))
	require.NoError(t, err)
	assert.Equal(t, "2021-11-07..2021-11-07", r.String())
}

func TestRangeEndAfter(t *testing.T) {
	r := Range{Start: MustDate("2021-10-21"), End: MustDate("2021-11-08")}

	assert.True(t, r.EndAfter(MustDate("2021-11-07")))
	assert.False(t, r.EndAfter(MustDate("2021-11-08")))
	assert.False(t, r.EndAfter(MustDate("2021-11-09")))
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: MustDate("2021-11-01"), End: MustDate("2021-11-08")}

	assert.True(t, r.Contains(MustDate("2021-11-01")))
	assert.True(t, r.Contains(MustDate("2021-11-08")))
	assert.True(t, r.Contains(MustDate("2021-11-05")))
	assert.False(t, r.Contains(MustDate("2021-10-31")))
	assert.False(t, r.Contains(MustDate("2021-11-09")))
}

// A fetch window must never include today: the source's data for the
// current day may still change.
func TestRangeValidateForFetch(t *testing.T) {
	today := MustDate("2021-11-09")

	tests := []struct {
		name  string
		end   string
		valid bool
	}{
		{"ends yesterday", "2021-11-08", true},
		{"ends today", "2021-11-09", false},
		{"ends tomorrow", "2021-11-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Range{Start: MustDate("2021-10-21"), End: MustDate(tt.end)}
			err := r.ValidateForFetch(today)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				var ire *InvalidRangeError
				require.ErrorAs(t, err, &ire)
			}
		})
	}
}
