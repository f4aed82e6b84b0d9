package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		result, err := ParseVerdict(`{"isClean": true, "reason": "ok", "detectedIssues": [], "confidence": 0.97}`)
		assert.NoError(t, err)
		assert.True(t, result.IsClean)
		assert.Equal(t, 0.97, result.Confidence)
	})

	t.Run("fenced json", func(t *testing.T) {
		raw := "```json\n{\"isClean\": false, \"reason\": \"harassment\", \"detectedIssues\": [\"harassment\"], \"confidence\": 0.9}\n```"
		result, err := ParseVerdict(raw)
		assert.NoError(t, err)
		assert.False(t, result.IsClean)
		assert.Equal(t, []string{"harassment"}, result.DetectedIssues)
	})

	t.Run("fenced without language tag", func(t *testing.T) {
		raw := "```\n{\"isClean\": true, \"reason\": \"ok\"}\n```"
		result, err := ParseVerdict(raw)
		assert.NoError(t, err)
		assert.True(t, result.IsClean)
	})

	t.Run("prose reply fails", func(t *testing.T) {
		_, err := ParseVerdict("The content looks fine to me.")
		assert.Error(t, err)
	})

	t.Run("empty reply fails", func(t *testing.T) {
		_, err := ParseVerdict("")
		assert.Error(t, err)
	})
}

func TestDisabledModeratorPassesEverything(t *testing.T) {
	m := disabledModerator{}
	result, err := m.Check(context.Background(), "anything at all")
	assert.NoError(t, err)
	assert.True(t, result.IsClean)
}
