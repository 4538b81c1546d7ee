package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Valid(t *testing.T) {
	valid := []string{"a@b.co", "first.last@sub.domain.io"}
	for _, addr := range valid {
		assert.True(t, Valid(addr), addr)
	}

	invalid := []string{"", "@example.com", "user@", "no-at-sign", "a@@b.co", "a@nodot", "a@dot."}
	for _, addr := range invalid {
		assert.False(t, Valid(addr), addr)
	}
}

func Test_Normalize(t *testing.T) {
	assert.Equal(t, "ada.wambui@example.com", Normalize("  Ada.Wambui@Example.COM "))
}

func Test_DeriveNameFromEmail(t *testing.T) {
	first, last := DeriveNameFromEmail("ada.wambui@example.com")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Wambui", last)

	first, last = DeriveNameFromEmail("ada@example.com")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Student", last)

	first, last = DeriveNameFromEmail("...@example.com")
	assert.Equal(t, "Student", first)
	assert.Equal(t, "Student", last)
}
