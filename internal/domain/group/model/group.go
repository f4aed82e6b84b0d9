package model

import (
	"time"

	usermodel "microsocial/internal/domain/user/model"
	baseModel "microsocial/pkg/model"
)

// Membership roles inside a group. The owner is tracked on the group row
// and additionally holds a membership row like everyone else.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
)

// Group is a community with an owner, members and a message board.
type Group struct {
	baseModel.BaseModel
	OwnerID     string `gorm:"type:uuid;not null;index" json:"ownerId"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:varchar(1000)" json:"description"`
	AvatarURL   string `gorm:"type:varchar(500)" json:"avatarUrl"`

	Owner *usermodel.User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMember is one user's membership. CreatedAt doubles as the join time.
type GroupMember struct {
	baseModel.BaseModel
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_member_pair" json:"groupId"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_member_pair" json:"userId"`
	Role    string `gorm:"type:varchar(20);not null;default:'member'" json:"role"`

	User *usermodel.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupJoinRequest is a pending request; accept and reject both remove it.
type GroupJoinRequest struct {
	baseModel.BaseModel
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_join_pair" json:"groupId"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_join_pair" json:"userId"`
	Message string `gorm:"type:varchar(500)" json:"message"`

	User *usermodel.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupJoinRequest) TableName() string {
	return "group_join_requests"
}

// GroupMessage is a post on the group's message board.
type GroupMessage struct {
	baseModel.BaseModel
	GroupID  string     `gorm:"type:uuid;not null;index" json:"groupId"`
	SenderID string     `gorm:"type:uuid;not null;index" json:"senderId"`
	Content  string     `gorm:"type:varchar(2000);not null" json:"content"`
	EditedAt *time.Time `json:"editedAt,omitempty"`

	Sender *usermodel.User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (GroupMessage) TableName() string {
	return "group_messages"
}

// ChooseSuccessor picks the member ownership passes to when the owner
// leaves or is removed. Moderators win over plain members; ties break on
// the earliest join time. The departing owner is excluded. Returns nil
// when nobody remains, which means the group must be deleted.
func ChooseSuccessor(members []GroupMember, departingOwnerID string) *GroupMember {
	var best *GroupMember
	for i := range members {
		m := &members[i]
		if m.UserID == departingOwnerID {
			continue
		}
		if best == nil {
			best = m
			continue
		}
		if rank(m.Role) > rank(best.Role) {
			best = m
			continue
		}
		if rank(m.Role) == rank(best.Role) && m.CreatedAt.Before(best.CreatedAt) {
			best = m
		}
	}
	return best
}

func rank(role string) int {
	if role == RoleModerator {
		return 1
	}
	return 0
}
