package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("Date;Label;Revenue"))
	assert.Equal(t, ',', DetectDelimiter("Date,Label,Revenue"))
	assert.Equal(t, ',', DetectDelimiter("Date"))
}

func TestParse_SemicolonWithQuotedCommaDecimals(t *testing.T) {
	data := []byte("Date;Label;Revenue Web\n4-2-2026;Acme;\"1.633,50\"\n5-2-2026;Acme;12,00\n")

	table, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Label", "Revenue Web"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1.633,50", table.Rows[0]["Revenue Web"])
	assert.Equal(t, "12,00", table.Rows[1]["Revenue Web"])
}

func TestParse_CommaWithQuotedDelimiter(t *testing.T) {
	data := []byte("date,title,description\n14-2-2026,Valentine,\"Promo, sitewide\"\n")

	rows, err := ParseRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Promo, sitewide", rows[0]["description"])
}

func TestParse_BOMBlankLinesAndShortRows(t *testing.T) {
	data := []byte("\xEF\xBB\xBFDate;Label;Orders\r\n4-2-2026;Acme\r\n;;\r\n\r\n5-2-2026;Acme;3;extra\r\n")

	table, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Date", table.Headers[0])
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["Orders"])
	assert.Equal(t, "3", table.Rows[1]["Orders"])
}

func TestParse_Empty(t *testing.T) {
	table, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}
