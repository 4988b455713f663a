package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	p := NewPagination(25, 10, 3)
	assert.Equal(t, 3, p.TotalPages)
	start, end := p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)
	assert.False(t, p.HasNext())
	assert.Equal(t, "Showing 21-25 of 25 days (page 3 of 3)", p.FormatSummary())
	assert.Equal(t, "use --page 2 for previous", p.FormatNavigation())
}

func TestPagination_Clamps(t *testing.T) {
	p := NewPagination(5, 10, 9)
	assert.Equal(t, 1, p.Current)
	assert.Empty(t, p.FormatNavigation())

	empty := NewPagination(0, 10, 1)
	start, end := empty.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
	assert.Equal(t, "No results", empty.FormatSummary())
}
