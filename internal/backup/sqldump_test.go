package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSQLValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatSQLValue(nil))
	assert.Equal(t, "TRUE", FormatSQLValue(true))
	assert.Equal(t, "FALSE", FormatSQLValue(false))
	assert.Equal(t, "42", FormatSQLValue(int64(42)))
	assert.Equal(t, "3.14", FormatSQLValue(3.14))
	assert.Equal(t, "'hello'", FormatSQLValue("hello"))
	assert.Equal(t, "'bytes'", FormatSQLValue([]byte("bytes")))

	// single quotes are doubled
	assert.Equal(t, "'it''s'", FormatSQLValue("it's"))

	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "'2024-03-15 10:30:00'", FormatSQLValue(ts))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"stores"`, quoteIdent("stores"))
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
}
