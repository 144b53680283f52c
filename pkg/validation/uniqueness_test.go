package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateNames(t *testing.T) {
	duplicates := DuplicateNames([]string{"a", "a", "b"})

	assert.True(t, duplicates["a"])
	assert.False(t, duplicates["b"])
	assert.Len(t, duplicates, 1)
}

func TestDuplicateNames_NoStaleFlagsAfterEdit(t *testing.T) {
	rows := []string{"a", "a", "b"}
	assert.True(t, DuplicateNames(rows)["a"])

	// Renaming one row clears the flag for both former duplicates.
	rows[1] = "c"
	duplicates := DuplicateNames(rows)

	assert.Empty(t, duplicates)
}

func TestDuplicateVersionTags(t *testing.T) {
	duplicates := DuplicateVersionTags([]string{"1.0.0", "1.0.1", "1.0.0"})

	assert.True(t, duplicates["1.0.0"])
	assert.False(t, duplicates["1.0.1"])
}
