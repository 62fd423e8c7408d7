package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iranmap/inventory-bot/internal/parser"
)

func TestClassifyEmbedTitle(t *testing.T) {
	tests := []struct {
		title string
		want  parser.Action
	}{
		{"Bardasht Item Log", parser.ActionRemove},
		{"برداشت آیتم", parser.ActionRemove},
		{"Item Removed", parser.ActionRemove},
		{"Gozashtan Item Log", parser.ActionAdd},
		{"گذاشت آیتم", parser.ActionAdd},
		{"Item Added", parser.ActionAdd},
		{"Server Announcement", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyEmbedTitle(tt.title), tt.title)
	}
}

func TestIsLogEmbedTitle(t *testing.T) {
	assert.True(t, isLogEmbedTitle("Log System"))
	assert.True(t, isLogEmbedTitle("Inventory Update"))
	assert.True(t, isLogEmbedTitle("Bardasht Item"))
	assert.True(t, isLogEmbedTitle("لاگ سیستم"))
	assert.True(t, isLogEmbedTitle("New item received"))

	assert.False(t, isLogEmbedTitle(""))
	assert.False(t, isLogEmbedTitle("Welcome to the server"))
}

func TestIsRelevantFieldName(t *testing.T) {
	assert.True(t, isRelevantFieldName("Item"))
	assert.True(t, isRelevantFieldName("آیتم"))
	assert.True(t, isRelevantFieldName("Esm IC Player"))
	assert.False(t, isRelevantFieldName("Timestamp"))
}
