package model

import (
	usermodel "microsocial/internal/domain/user/model"
	baseModel "microsocial/pkg/model"
)

// Reaction types.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// ValidReaction reports whether t is a known reaction type.
func ValidReaction(t string) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// Post is a piece of user content, optionally with attached media.
type Post struct {
	baseModel.BaseModel
	AuthorID string `gorm:"type:uuid;not null;index" json:"authorId"`
	Content  string `gorm:"type:varchar(2000);not null" json:"content"`

	// CommentsCount is recomputed from the comments table after every
	// comment mutation; it is never incremented in place.
	CommentsCount int64 `gorm:"default:0" json:"commentsCount"`

	Author *usermodel.User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Media  []PostMedia     `gorm:"foreignKey:PostID" json:"media,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// PostMedia is one uploaded attachment of a post.
type PostMedia struct {
	baseModel.BaseModel
	PostID    string `gorm:"type:uuid;not null;index" json:"postId"`
	URL       string `gorm:"type:varchar(500);not null" json:"url"`
	MediaType string `gorm:"type:varchar(20);not null" json:"mediaType"` // image, video
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

func (PostMedia) TableName() string {
	return "post_media"
}

// Comment is a flat comment on a post.
type Comment struct {
	baseModel.BaseModel
	PostID   string `gorm:"type:uuid;not null;index" json:"postId"`
	AuthorID string `gorm:"type:uuid;not null;index" json:"authorId"`
	Content  string `gorm:"type:varchar(1000);not null" json:"content"`

	Author *usermodel.User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// Reaction is one user's single reaction on a post.
type Reaction struct {
	baseModel.BaseModel
	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_pair" json:"postId"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_pair" json:"userId"`
	Type   string `gorm:"type:varchar(20);not null" json:"type"`
}

func (Reaction) TableName() string {
	return "reactions"
}

// SavedPost is a private bookmark.
type SavedPost struct {
	baseModel.BaseModel
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_saved_pair" json:"userId"`
	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_saved_pair" json:"postId"`
}

func (SavedPost) TableName() string {
	return "saved_posts"
}
