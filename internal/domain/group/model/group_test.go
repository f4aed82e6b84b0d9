package model

import (
	"testing"
	"time"

	baseModel "microsocial/pkg/model"

	"github.com/stretchr/testify/assert"
)

func member(userID, role string, joined time.Time) GroupMember {
	return GroupMember{
		BaseModel: baseModel.BaseModel{CreatedAt: joined},
		UserID:    userID,
		Role:      role,
	}
}

func TestChooseSuccessor(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("moderator preferred over earlier member", func(t *testing.T) {
		members := []GroupMember{
			member("owner", RoleModerator, t0),
			member("m1", RoleMember, t0.Add(1*time.Hour)),
			member("mod", RoleModerator, t0.Add(2*time.Hour)),
			member("m2", RoleMember, t0.Add(3*time.Hour)),
		}
		successor := ChooseSuccessor(members, "owner")
		assert.NotNil(t, successor)
		assert.Equal(t, "mod", successor.UserID)
	})

	t.Run("earliest member when no moderators", func(t *testing.T) {
		members := []GroupMember{
			member("owner", RoleMember, t0),
			member("late", RoleMember, t0.Add(2*time.Hour)),
			member("early", RoleMember, t0.Add(1*time.Hour)),
		}
		successor := ChooseSuccessor(members, "owner")
		assert.NotNil(t, successor)
		assert.Equal(t, "early", successor.UserID)
	})

	t.Run("moderator tie breaks on join time", func(t *testing.T) {
		members := []GroupMember{
			member("owner", RoleMember, t0),
			member("mod-late", RoleModerator, t0.Add(2*time.Hour)),
			member("mod-early", RoleModerator, t0.Add(1*time.Hour)),
		}
		successor := ChooseSuccessor(members, "owner")
		assert.NotNil(t, successor)
		assert.Equal(t, "mod-early", successor.UserID)
	})

	t.Run("sole member leaves nobody", func(t *testing.T) {
		members := []GroupMember{
			member("owner", RoleModerator, t0),
		}
		assert.Nil(t, ChooseSuccessor(members, "owner"))
	})

	t.Run("empty membership", func(t *testing.T) {
		assert.Nil(t, ChooseSuccessor(nil, "owner"))
	})
}
