package extraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"claimflow/internal/extraction"
)

func TestPrefix_CountsRunes(t *testing.T) {
	assert.Equal(t, "héll", extraction.Prefix("héllo", 4))
	assert.Equal(t, "abc", extraction.Prefix("abc", 10))
	assert.Equal(t, "abc", extraction.Prefix("abc", 0))
}
