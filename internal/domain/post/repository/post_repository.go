package repository

import (
	"time"

	"microsocial/internal/domain/post/model"

	"gorm.io/gorm"
)

// PostRepository is the persistence interface for posts and their
// comments, reactions and bookmarks.
type PostRepository interface {
	CreatePost(post *model.Post) error
	GetPostByID(id string) (*model.Post, error)
	UpdatePost(post *model.Post) error
	ReplaceMedia(postID string, media []model.PostMedia) error
	DeletePostCascade(postID string) error
	GetByAuthor(authorID string, offset, limit int) ([]model.Post, int64, error)
	CountByAuthor(authorID string) (int64, error)
	GetFeed(authorIDs []string, offset, limit int) ([]model.Post, int64, error)
	GetAllPosts(offset, limit int) ([]model.Post, int64, error)
	GetPublicFeed(limit int) ([]model.Post, error)
	SearchPosts(query string, authorIDs []string, limit int) ([]model.Post, error)
	CountPosts() (int64, error)
	CountPostsSince(since time.Time) (int64, error)

	GetReaction(postID, userID string) (*model.Reaction, error)
	CreateReaction(reaction *model.Reaction) error
	UpdateReaction(reaction *model.Reaction) error
	DeleteReaction(reaction *model.Reaction) error
	CountReactions(postID string) (int64, error)
	CountReactionsByType(postID string) (map[string]int64, error)

	CreateComment(comment *model.Comment) error
	GetCommentByID(id string) (*model.Comment, error)
	UpdateComment(comment *model.Comment) error
	DeleteComment(comment *model.Comment) error
	GetComments(postID string, offset, limit int) ([]model.Comment, int64, error)
	RefreshCommentsCount(postID string) (int64, error)
	CountComments() (int64, error)

	SavePost(saved *model.SavedPost) error
	UnsavePost(userID, postID string) error
	IsSaved(userID, postID string) (bool, error)
	GetSavedPosts(userID string, offset, limit int) ([]model.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(post *model.Post) error {
	// Media rows are created with the post through the association.
	return r.db.Create(post).Error
}

func (r *postRepository) GetPostByID(id string) (*model.Post, error) {
	var post model.Post
	err := r.db.
		Preload("Author").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdatePost(post *model.Post) error {
	return r.db.Omit("Author", "Media").Save(post).Error
}

// ReplaceMedia swaps the post's media set for the given rows.
func (r *postRepository) ReplaceMedia(postID string, media []model.PostMedia) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("post_id = ?", postID).
			Delete(&model.PostMedia{}).Error; err != nil {
			return err
		}
		if len(media) == 0 {
			return nil
		}
		for i := range media {
			media[i].PostID = postID
		}
		return tx.Create(&media).Error
	})
}

// DeletePostCascade removes the post and every row hanging off it.
func (r *postRepository) DeletePostCascade(postID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("post_id = ?", postID).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", postID).Delete(&model.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", postID).Delete(&model.PostMedia{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", postID).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) GetByAuthor(authorID string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	base := r.db.Model(&model.Post{}).Where("author_id = ?", authorID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Author").
		Preload("Media").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) CountByAuthor(authorID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// GetFeed returns the newest posts from the given authors.
func (r *postRepository) GetFeed(authorIDs []string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	if len(authorIDs) == 0 {
		return posts, 0, nil
	}

	base := r.db.Model(&model.Post{}).Where("author_id IN ?", authorIDs)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Author").
		Preload("Media").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// GetAllPosts is the unrestricted feed used by administrators.
func (r *postRepository) GetAllPosts(offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	if err := r.db.Model(&model.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Preload("Author").
		Preload("Media").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// GetPublicFeed is the anonymous landing feed: newest posts from public
// accounts, capped, no pagination.
func (r *postRepository) GetPublicFeed(limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.
		Joins("JOIN users ON users.id = posts.author_id AND users.is_public = true AND users.deleted_at IS NULL").
		Preload("Author").
		Preload("Media").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// SearchPosts matches content, restricted to the given visible authors.
func (r *postRepository) SearchPosts(query string, authorIDs []string, limit int) ([]model.Post, error) {
	var posts []model.Post
	q := r.db.
		Preload("Author").
		Preload("Media").
		Where("content ILIKE ?", "%"+query+"%")
	if authorIDs != nil {
		q = q.Where("author_id IN ?", authorIDs)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountPosts() (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) CountPostsSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *postRepository) GetReaction(postID, userID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *postRepository) CreateReaction(reaction *model.Reaction) error {
	return r.db.Create(reaction).Error
}

func (r *postRepository) UpdateReaction(reaction *model.Reaction) error {
	return r.db.Save(reaction).Error
}

func (r *postRepository) DeleteReaction(reaction *model.Reaction) error {
	// Hard delete so the unique (post, user) pair can react again.
	return r.db.Unscoped().Delete(reaction).Error
}

// CountReactions is the only source of a post's like count; nothing is
// stored on the post row.
func (r *postRepository) CountReactions(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Reaction{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *postRepository) CountReactionsByType(postID string) (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	err := r.db.Model(&model.Reaction{}).
		Select("type, COUNT(*) as count").
		Where("post_id = ?", postID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Type] = rr.Count
	}
	return counts, nil
}

func (r *postRepository) CreateComment(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *postRepository) GetCommentByID(id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *postRepository) UpdateComment(comment *model.Comment) error {
	return r.db.Omit("Author").Save(comment).Error
}

func (r *postRepository) DeleteComment(comment *model.Comment) error {
	return r.db.Unscoped().Delete(comment).Error
}

func (r *postRepository) GetComments(postID string, offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	base := r.db.Model(&model.Comment{}).Where("post_id = ?", postID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Author").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

// RefreshCommentsCount recomputes the stored counter from the comments
// table and returns the fresh value.
func (r *postRepository) RefreshCommentsCount(postID string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	err := r.db.Model(&model.Post{}).Where("id = ?", postID).
		Update("comments_count", count).Error
	return count, err
}

func (r *postRepository) CountComments() (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Count(&count).Error
	return count, err
}

func (r *postRepository) SavePost(saved *model.SavedPost) error {
	return r.db.Create(saved).Error
}

func (r *postRepository) UnsavePost(userID, postID string) error {
	return r.db.Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.SavedPost{}).Error
}

func (r *postRepository) IsSaved(userID, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) GetSavedPosts(userID string, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	base := r.db.Model(&model.SavedPost{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id AND saved_posts.user_id = ?", userID).
		Preload("Author").
		Preload("Media").
		Order("saved_posts.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}
