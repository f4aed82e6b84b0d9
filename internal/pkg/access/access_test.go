package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanView(t *testing.T) {
	tests := []struct {
		name             string
		ownerIsPublic    bool
		ownerID          string
		viewerID         string
		viewerIsAdmin    bool
		acceptedFollower bool
		want             bool
	}{
		{"admin sees private account", false, "owner", "admin", true, false, true},
		{"admin sees public account", true, "owner", "admin", true, false, true},
		{"public account visible to anonymous", true, "owner", "", false, false, true},
		{"public account visible to stranger", true, "owner", "stranger", false, false, true},
		{"private account hidden from anonymous", false, "owner", "", false, false, false},
		{"owner sees own private account", false, "owner", "owner", false, false, true},
		{"accepted follower sees private account", false, "owner", "follower", false, true, true},
		{"non-follower blocked from private account", false, "owner", "stranger", false, false, false},
		{"pending follow grants nothing", false, "owner", "requester", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanView(tt.ownerIsPublic, tt.ownerID, tt.viewerID, tt.viewerIsAdmin, tt.acceptedFollower)
			assert.Equal(t, tt.want, got)
		})
	}
}
