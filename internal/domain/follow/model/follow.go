package model

import (
	"time"

	usermodel "microsocial/internal/domain/user/model"
	baseModel "microsocial/pkg/model"
)

// Follow states. A row only exists while a relationship (or request) does;
// unfollow and decline both delete the row.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Follow is a directed edge from follower to following.
type Follow struct {
	baseModel.BaseModel
	FollowerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FollowingID string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"followingId"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	RequestedAt time.Time  `json:"requestedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`

	Follower  *usermodel.User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *usermodel.User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

func (Follow) TableName() string {
	return "follows"
}

// IsAccepted reports whether the edge grants content access.
func (f *Follow) IsAccepted() bool {
	return f.Status == StatusAccepted
}
