package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My First Post":     "my-first-post",
		"  Café au lait!  ": "cafe-au-lait",
		"Go & Rust -- 2025": "go-rust-2025",
		"Привет мир":        "привет-мир",
		"already-a-slug":    "already-a-slug",
		"snake_case_title":  "snake-case-title",
		"---":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("my-post-2"))
	assert.True(t, ValidSlug("привет-мир"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("My-Post"))
	assert.False(t, ValidSlug("my post"))
	assert.False(t, ValidSlug("-post"))
	assert.False(t, ValidSlug("my--post"))
}
