package harmonize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEvents(t *testing.T) {
	h := New()
	sum := h.AddEvents([]map[string]string{
		{"Date": "14-2-2026", "Title": "Valentine promo", "Description": "20% off", "Category": "Promo", "Label": "Acme"},
		{"Date": "31-4-2026", "Title": "Loose date"},
		{"Date": "1-1-2026", "Title": "New year", "Category": ""},
		{"Date": "never", "Title": "Broken"},
		{"Date": "2-2-2026", "Title": ""},
		{"Date": "", "Title": ""},
	})
	assert.Equal(t, 3, sum.SuccessCount)
	assert.Equal(t, 2, sum.ErrorCount)
	assert.Equal(t, 1, sum.SkippedCount)

	ds := h.Harmonize(false)
	require.Len(t, ds.Events, 3)
	assert.Equal(t, "New year", ds.Events[0].Title)
	assert.Equal(t, defaultEventCategory, ds.Events[0].Category)
	assert.True(t, ds.Events[1].Date.Equal(day(2026, 2, 14)))
	assert.Equal(t, "promo", ds.Events[1].Category)
	assert.Equal(t, "Acme", ds.Events[1].Label)
	assert.True(t, ds.Events[2].Date.Equal(day(2026, 5, 1)))
}
