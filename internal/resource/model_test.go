package resource

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecBuildDefaults(t *testing.T) {
	res, err := Spec{Name: "  Lapangan A  "}.Build()
	require.NoError(t, err)

	assert.Equal(t, "Lapangan A", res.Name)
	assert.Equal(t, DefaultSportType, res.SportType)
	assert.Equal(t, DefaultSlotMinutes, res.SlotMinutes)
	assert.True(t, res.PricePerHour.IsZero())
	assert.True(t, res.IsActive)
}

func TestSpecBuildValidation(t *testing.T) {
	zero := 0
	negative := decimal.NewFromInt(-1)

	_, err := Spec{Name: "   "}.Build()
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Spec{Name: "Gym Room", SlotMinutes: &zero}.Build()
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = Spec{Name: "Gym Room", PricePerHour: &negative}.Build()
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestSpecBuildTruncatesLongLabels(t *testing.T) {
	long := strings.Repeat("é", 200)
	res, err := Spec{Name: long, LocationName: long}.Build()
	require.NoError(t, err)

	assert.Equal(t, 120, len([]rune(res.Name)))
	assert.Equal(t, 120, len([]rune(res.LocationName)))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jakarta - Lapangan A", (&Resource{Name: "Lapangan A", LocationName: "Jakarta"}).DisplayName())
	assert.Equal(t, "Gym Room", (&Resource{Name: "Gym Room"}).DisplayName())
	assert.Equal(t, "Spot", (&Resource{Name: "Spot", LocationName: "Spot"}).DisplayName())
}

func TestPatchApply(t *testing.T) {
	base := Resource{
		Name:         "Court A",
		SportType:    "tennis",
		IsActive:     true,
		SlotMinutes:  60,
		PricePerHour: decimal.NewFromInt(100),
	}

	res := base
	price := decimal.RequireFromString("80.555")
	slot := 30
	inactive := false
	blank := " "
	require.NoError(t, Patch{PricePerHour: &price, SlotMinutes: &slot, IsActive: &inactive, SportType: &blank}.Apply(&res))
	assert.Equal(t, "80.56", res.PricePerHour.StringFixed(2))
	assert.Equal(t, 30, res.SlotMinutes)
	assert.False(t, res.IsActive)
	assert.Equal(t, DefaultSportType, res.SportType)
	assert.Equal(t, "Court A", res.Name)

	zero := 0
	negative := decimal.NewFromInt(-5)
	tests := []struct {
		name    string
		patch   Patch
		wantErr error
	}{
		{"blank name", Patch{Name: &blank}, ErrEmptyName},
		{"zero slot", Patch{SlotMinutes: &zero}, ErrInvalidSlot},
		{"negative price", Patch{PricePerHour: &negative, IsActive: &inactive}, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := base
			assert.ErrorIs(t, tt.patch.Apply(&res), tt.wantErr)
			assert.Equal(t, base, res)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Court A", NormalizeName("  Court A "))
	long := NormalizeName(strings.Repeat("ab ", 100))
	assert.Len(t, []rune(long), 119)
	assert.Equal(t, long, NormalizeName(long))
}
