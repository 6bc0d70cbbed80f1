package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	in := "Unit   1\tIntroduction\n\n\n  Relational   model  \n\f\nKeys and constraints\n"
	out := normalizeWhitespace(in)

	assert.Equal(t, "Unit 1 Introduction\nRelational model\nKeys and constraints", out)
}

func TestNormalizeWhitespaceEmpty(t *testing.T) {
	assert.Equal(t, "", normalizeWhitespace("  \n \f \n"))
}
