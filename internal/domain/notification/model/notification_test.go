package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("system notice without actor keeps NULL references", func(t *testing.T) {
		n := New("member-1", "", TypeGroupDeleted, `The group "hikers" was deleted`, "")
		assert.Equal(t, "member-1", n.RecipientID)
		assert.Nil(t, n.ActorID)
		assert.Nil(t, n.TargetID)
		assert.Equal(t, "", n.TargetRef())
	})

	t.Run("actor and target carried through", func(t *testing.T) {
		n := New("author-1", "viewer-1", TypeLike, "viewer reacted to your post", "post-1")
		require.NotNil(t, n.ActorID)
		assert.Equal(t, "viewer-1", *n.ActorID)
		require.NotNil(t, n.TargetID)
		assert.Equal(t, "post-1", n.TargetRef())
	})
}
