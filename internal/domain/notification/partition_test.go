package notification

import (
	"testing"

	"fleet_backoffice/internal/domain/vehicle"

	"github.com/stretchr/testify/assert"
)

func TestMatchesDigit(t *testing.T) {
	tests := []struct {
		plate string
		digit Digit
		want  bool
	}{
		{plate: "ABC-7", digit: 7, want: true},
		{plate: "ABC-7", digit: 3, want: false},
		{plate: "NCR 1230", digit: 0, want: true},
		{plate: "XYZ 9", digit: 9, want: true},
		{plate: "7", digit: 7, want: true},
		{plate: "", digit: 0, want: false},
		{plate: "ABC 7 ", digit: 7, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.plate, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesDigit(tt.plate, tt.digit))
		})
	}
}

func TestMatchesDigit_NonNumericNeverMatches(t *testing.T) {
	for d := Digit(0); d <= 9; d++ {
		assert.False(t, MatchesDigit("ABC-A", d))
		assert.False(t, MatchesDigit("ABC-٣", d))
	}
}

func TestFilterByDigit(t *testing.T) {
	vehicles := []*vehicle.Vehicle{
		{ID: 1, PlateNumber: "ABC-7"},
		{ID: 2, PlateNumber: "DEF-17"},
		{ID: 3, PlateNumber: "GHI-A"},
		nil,
		{ID: 4, PlateNumber: "JKL-2"},
	}

	got := FilterByDigit(vehicles, 7)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	assert.Empty(t, FilterByDigit(vehicles, 5))
}
