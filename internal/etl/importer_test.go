package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"Store Name":        "store_name",
		"  Gross Sales  ":   "gross_sales",
		"Net-Sales":         "net_sales",
		"Amount (USD)":      "amount_usd",
		"2023 Total":        "c_2023_total",
		"Qty#":              "qty",
		"":                  "c_",
		"ALREADY_GOOD":      "already_good",
		"Weird  Spacing":    "weird__spacing",
		"Региональный Code": "_code",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumn(in), "input %q", in)
	}
}

func TestCoerceCell(t *testing.T) {
	assert.Equal(t, "", CoerceCell("  "))
	assert.Equal(t, "hello", CoerceCell("hello"))
	assert.Equal(t, "12345", CoerceCell("12345"))

	// date-shaped cells come out as RFC 3339
	out := CoerceCell("2024-03-15")
	assert.Contains(t, out, "2024-03-15T")

	out = CoerceCell("03/15/2024")
	assert.Contains(t, out, "2024-03-15T")

	// dash-bearing non-dates pass through
	assert.Equal(t, "item-code-ABC", CoerceCell("item-code-ABC"))
}

func TestColumnNamesDedup(t *testing.T) {
	cols := columnNames([]string{"Name", "Value", "Value", "name", "Value"})
	assert.Equal(t, []string{"name", "value", "value_2", "name_2", "value_3"}, cols)
}

func TestIsValidTableName(t *testing.T) {
	assert.True(t, isValidTableName("bi_dimensions"))
	assert.True(t, isValidTableName("_staging"))
	assert.False(t, isValidTableName("1table"))
	assert.False(t, isValidTableName("drop table x;"))
	assert.False(t, isValidTableName("Mixed"))
	assert.False(t, isValidTableName(""))
}
