package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFromURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://cdn.example.com/a/b/summer-hero.jpg", "summer-hero"},
		{"https://cdn.example.com/a/b/summer-hero.jpg?w=400", "summer-hero"},
		{"/uploads/teapot.final.webp", "teapot.final"},
		{"plain-name", "plain-name"},
		{"https://cdn.example.com/", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFromURL(tt.in), "LabelFromURL(%q)", tt.in)
	}
}

func TestNormalizeImages(t *testing.T) {
	refs := NormalizeImages([]any{
		"https://cdn.example.com/x/front.png",
		map[string]any{"label": "  Lifestyle  ", "name": "ignored", "url": "https://cdn.example.com/x/life.png"},
		map[string]any{"name": "", "url": "https://cdn.example.com/x/back.png"},
		map[string]any{},
		nil,
		"https://cdn.example.com/",
	})

	assert.Equal(t, []ImageRef{
		{Label: "front", URL: "https://cdn.example.com/x/front.png"},
		{Label: "Lifestyle", URL: "https://cdn.example.com/x/life.png"},
		{Label: "back", URL: "https://cdn.example.com/x/back.png"},
		{Label: "image-4"},
		{Label: "image-5"},
		{Label: "image-6", URL: "https://cdn.example.com/"},
	}, refs)
	assert.Equal(t, []string{"front", "Lifestyle", "back", "image-4", "image-5", "image-6"}, Labels(refs))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://cdn.example.com/a.png"))
	assert.True(t, IsURL("/uploads/a.png"))
	assert.False(t, IsURL("summer banner"))
	assert.False(t, IsURL("asset-hero"))
	assert.False(t, IsURL("mailto:x@example.com"))
}
