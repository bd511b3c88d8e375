package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", d.String())

	_, err = ParseDate("15/03/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-01"`), &d))
	assert.Equal(t, "2024-12-01", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-01"`, string(out))

	// Absent dates decode to the zero value instead of failing.
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}

func TestThemeOther(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Other())
	assert.Equal(t, ThemeLight, ThemeDark.Other())
	assert.True(t, ThemeLight.Valid())
	assert.False(t, Theme("solarized").Valid())
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func amt(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

func TestGroupByCategory(t *testing.T) {
	records := []Transaction{
		{CategoryName: "Food", Amount: amt(10)},
		{CategoryName: "Rent", Amount: amt(500)},
		{CategoryName: "Food", Amount: amt(15.50)},
		{CategoryName: "Transport", Amount: amt(25.50)},
	}

	got := GroupByCategory(records)
	require.Len(t, got, 3)
	assert.Equal(t, "Rent", got[0].Name)
	assert.Equal(t, "500.00", got[0].Total.Display())
	// Food and Transport tie at 25.50; the name breaks the tie.
	assert.Equal(t, "Food", got[1].Name)
	assert.Equal(t, "25.50", got[1].Total.Display())
	assert.Equal(t, "Transport", got[2].Name)
}

func TestSortByDateDesc(t *testing.T) {
	records := []Transaction{
		{ID: 1, Date: mustDate(t, "2025-01-01")},
		{ID: 2, Date: mustDate(t, "2025-02-01")},
		{ID: 3, Date: mustDate(t, "2025-01-15")},
		{ID: 4, Date: mustDate(t, "2025-02-01")},
	}

	SortByDateDesc(records)

	var ids []int64
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	// Stable sort keeps 2 before 4 on the shared date.
	assert.Equal(t, []int64{2, 4, 3, 1}, ids)
}

func TestSumAmounts(t *testing.T) {
	records := []Transaction{
		{Amount: amt(1.10)},
		{Amount: amt(2.20)},
	}
	assert.Equal(t, "3.30", SumAmounts(records).Display())
	assert.Equal(t, "0.00", SumAmounts(nil).Display())
}
