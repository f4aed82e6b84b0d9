package model

import (
	usermodel "microsocial/internal/domain/user/model"
	baseModel "microsocial/pkg/model"
)

// Notification types.
const (
	TypeLike             = "like"
	TypeComment          = "comment"
	TypeCommentDeleted   = "comment_deleted"
	TypeFollow           = "follow"
	TypeFollowRequest    = "follow_request"
	TypeFollowAccepted   = "follow_accepted"
	TypeGroupJoinRequest = "group_join_request"
	TypeGroupJoinAccept  = "group_join_accepted"
	TypeGroupDeleted     = "group_deleted"
	TypeGroupOwnership   = "group_ownership"
)

// Notification is an in-app message for one recipient. ActorID is the user
// whose action caused it; system notices such as group deletions carry no
// actor. Both references are pointers so an absent one is stored as NULL,
// never as an empty string the uuid columns would reject.
type Notification struct {
	baseModel.BaseModel
	RecipientID string  `gorm:"type:uuid;not null;index" json:"recipientId"`
	ActorID     *string `gorm:"type:uuid;index" json:"actorId,omitempty"`
	Type        string  `gorm:"type:varchar(30);not null" json:"type"`
	Message     string  `gorm:"type:varchar(500);not null" json:"message"`

	// TargetID points at the subject (post, group, user) of the event.
	TargetID *string `gorm:"type:uuid;index" json:"targetId,omitempty"`
	IsRead   bool    `gorm:"default:false;index" json:"isRead"`

	Actor *usermodel.User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// New builds a notification for dispatch. Empty actor and target IDs
// become NULL references.
func New(recipientID, actorID, notifType, message, targetID string) *Notification {
	return &Notification{
		RecipientID: recipientID,
		ActorID:     optionalID(actorID),
		Type:        notifType,
		Message:     message,
		TargetID:    optionalID(targetID),
	}
}

// TargetRef returns the target id, or "" when the notification has none.
func (n *Notification) TargetRef() string {
	if n.TargetID == nil {
		return ""
	}
	return *n.TargetID
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
