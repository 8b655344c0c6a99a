package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name                     string
		quantity, rate, discount string
		want                     string
	}{
		{"ten percent discount", "10", "100", "10", "900.00"},
		{"no discount", "3", "19.99", "0", "59.97"},
		{"full discount", "5", "40", "100", "0.00"},
		{"rounds to cents", "1", "10.005", "0", "10.01"},
		{"fractional discount", "2", "33.33", "12.5", "58.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(ParseAmount(tt.quantity), ParseAmount(tt.rate), ParseAmount(tt.discount))
			assert.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

func TestUpdateRow(t *testing.T) {
	t.Run("recomputes only the edited row", func(t *testing.T) {
		rows := []ItemRow{
			{Description: "Cement", Quantity: "10", Rate: "100", Amount: "1000.00"},
			{Description: "Sand", Quantity: "2", Rate: "50", Amount: "stale"},
		}

		got := UpdateRow(rows, 0, FieldDiscount, "10")

		assert.Equal(t, "900.00", got[0].Amount)
		assert.Equal(t, "10", got[0].DiscountPercent)
		assert.Equal(t, "stale", got[1].Amount)
		assert.Equal(t, "1000.00", rows[0].Amount, "input must not be mutated")
	})

	t.Run("empty input is zero and leaves amount blank", func(t *testing.T) {
		rows := []ItemRow{{Quantity: "10", Rate: "100"}}

		got := UpdateRow(rows, 0, FieldQuantity, "")

		assert.Equal(t, "", got[0].Amount)
	})

	t.Run("garbage input is zero", func(t *testing.T) {
		rows := []ItemRow{{Quantity: "4", Rate: "25"}}

		got := UpdateRow(rows, 0, FieldRate, "abc")

		assert.Equal(t, "", got[0].Amount)
	})

	t.Run("description edit keeps amount in sync", func(t *testing.T) {
		rows := []ItemRow{{Quantity: "4", Rate: "25"}}

		got := UpdateRow(rows, 0, FieldDescription, "Bricks")

		assert.Equal(t, "Bricks", got[0].Description)
		assert.Equal(t, "100.00", got[0].Amount)
	})

	t.Run("out of range index and unknown field are no-ops", func(t *testing.T) {
		rows := []ItemRow{{Quantity: "1", Rate: "1", Amount: "1.00"}}

		assert.Equal(t, rows, UpdateRow(rows, 3, FieldRate, "9"))
		assert.Equal(t, rows, UpdateRow(rows, -1, FieldRate, "9"))
		assert.Equal(t, rows, UpdateRow(rows, 0, RowField("unit"), "kg"))
	})

	t.Run("negative values are not rejected", func(t *testing.T) {
		rows := []ItemRow{{Quantity: "-2", Rate: "10"}}

		got := UpdateRow(rows, 0, FieldDiscount, "0")

		assert.Equal(t, "-20.00", got[0].Amount)
	})
}

func TestRowHelpers(t *testing.T) {
	rows := NewRows()
	assert.Len(t, rows, 1)

	rows = AddRow(rows)
	rows = UpdateRow(rows, 1, FieldDescription, "second")
	assert.Len(t, rows, 2)

	rows = RemoveRow(rows, 0)
	assert.Len(t, rows, 1)
	assert.Equal(t, "second", rows[0].Description)

	rows = RemoveRow(rows, 0)
	assert.Len(t, rows, 1, "the last row stays")
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("").IsZero())
	assert.True(t, ParseAmount("  ").IsZero())
	assert.True(t, ParseAmount("12abc").IsZero())
	assert.True(t, ParseAmount(" 12.50 ").Equal(decimal.RequireFromString("12.5")))
}
