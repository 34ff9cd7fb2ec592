package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/trademind/internal/models"
)

func TestDefaults(t *testing.T) {
	seeds, err := Defaults()
	require.NoError(t, err)
	assert.Len(t, seeds, 8)
	assert.Equal(t, models.CategoryRiskManagement, seeds[0].Category)
}

func TestParse_RejectsUnknownCategory(t *testing.T) {
	_, err := Parse([]byte("rules:\n  - text: Meditate\n    category: Wellness\n"))
	assert.ErrorContains(t, err, "unknown category")
}

func TestParse_RejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("rules: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("rules:\n  - category: General\n"))
	assert.ErrorContains(t, err, "text is required")
}
