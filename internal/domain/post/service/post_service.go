package service

import (
	"context"
	"errors"
	"fmt"

	followrepo "microsocial/internal/domain/follow/repository"
	notifmodel "microsocial/internal/domain/notification/model"
	notifservice "microsocial/internal/domain/notification/service"
	"microsocial/internal/domain/post/model"
	"microsocial/internal/domain/post/repository"
	usermodel "microsocial/internal/domain/user/model"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/access"
	"microsocial/internal/pkg/moderation"
	"microsocial/internal/pkg/uploader"
	"microsocial/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNoAccess        = errors.New("you cannot view this content")
	ErrNotAuthor       = errors.New("only the author can do this")
	ErrContentRejected = errors.New("content was rejected by moderation")
	ErrContentTooLong  = errors.New("content exceeds the length limit")
	ErrEmptyContent    = errors.New("content cannot be empty")
	ErrInvalidReaction = errors.New("unknown reaction type")
	ErrAlreadySaved    = errors.New("post is already saved")
)

const (
	maxPostLength    = 2000
	maxCommentLength = 1000
	publicFeedCap    = 20
)

// MediaInput references an already-uploaded file.
type MediaInput struct {
	URL       string `json:"url" binding:"required"`
	MediaType string `json:"mediaType" binding:"required,oneof=image video"`
}

// PostView is a post decorated with everything the client renders:
// aggregate counters and the viewer's own state.
type PostView struct {
	model.Post
	LikesCount     int64            `json:"likesCount"`
	ReactionCounts map[string]int64 `json:"reactionCounts"`
	ViewerReaction string           `json:"viewerReaction,omitempty"`
	IsSaved        bool             `json:"isSaved"`
}

// ReactResult describes the state after a reaction toggle.
type ReactResult struct {
	Reaction   string `json:"reaction,omitempty"` // empty when removed
	LikesCount int64  `json:"likesCount"`
}

// PostService covers posts, comments, reactions and bookmarks.
type PostService interface {
	Create(ctx context.Context, authorID, content string, media []MediaInput) (*model.Post, error)
	Get(postID, viewerID string, viewerIsAdmin bool) (*PostView, error)
	Update(ctx context.Context, authorID, postID, content string, media *[]MediaInput) (*model.Post, error)
	Delete(userID string, isAdmin bool, postID string) error
	Feed(viewerID string, isAdmin bool, page, limit int) ([]PostView, int64, error)
	PublicFeed() ([]PostView, error)

	React(userID, postID, reactionType string) (*ReactResult, error)

	AddComment(ctx context.Context, authorID, postID, content string) (*model.Comment, error)
	UpdateComment(ctx context.Context, authorID, commentID, content string) (*model.Comment, error)
	DeleteComment(userID string, isAdmin bool, commentID string) error
	ListComments(postID, viewerID string, viewerIsAdmin bool, page, limit int) ([]model.Comment, int64, error)

	Save(userID, postID string) error
	Unsave(userID, postID string) error
	SavedPosts(userID string, page, limit int) ([]model.Post, int64, error)
}

type postService struct {
	repo       repository.PostRepository
	userRepo   userrepo.UserRepository
	followRepo followrepo.FollowRepository
	notifier   notifservice.Notifier
	moderator  moderation.Moderator
}

func NewPostService(repo repository.PostRepository, userRepo userrepo.UserRepository, followRepo followrepo.FollowRepository, notifier notifservice.Notifier, moderator moderation.Moderator) PostService {
	return &postService{
		repo:       repo,
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
		moderator:  moderator,
	}
}

func (s *postService) moderate(ctx context.Context, content string) error {
	verdict, err := s.moderator.Check(ctx, content)
	if err != nil {
		return err
	}
	if !verdict.IsClean {
		return fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}
	return nil
}

func (s *postService) Create(ctx context.Context, authorID, content string, media []MediaInput) (*model.Post, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxPostLength {
		return nil, ErrContentTooLong
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID: authorID,
		Content:  content,
	}
	for i, m := range media {
		post.Media = append(post.Media, model.PostMedia{
			URL:       m.URL,
			MediaType: m.MediaType,
			SortOrder: i,
		})
	}

	if err := s.repo.CreatePost(post); err != nil {
		return nil, err
	}
	return s.repo.GetPostByID(post.ID)
}

// canViewAuthor applies the visibility rules for content owned by authorID.
func (s *postService) canViewAuthor(author *usermodel.User, viewerID string, viewerIsAdmin bool) (bool, error) {
	accepted, err := s.followRepo.IsAcceptedFollower(viewerID, author.ID)
	if err != nil {
		return false, err
	}
	return access.CanView(author.IsPublic, author.ID, viewerID, viewerIsAdmin, accepted), nil
}

func (s *postService) getVisiblePost(postID, viewerID string, viewerIsAdmin bool) (*model.Post, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	author := post.Author
	if author == nil {
		author, err = s.userRepo.GetByID(post.AuthorID)
		if err != nil {
			return nil, err
		}
	}

	ok, err := s.canViewAuthor(author, viewerID, viewerIsAdmin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoAccess
	}
	return post, nil
}

func (s *postService) decorate(post *model.Post, viewerID string) (*PostView, error) {
	view := &PostView{Post: *post}

	counts, err := s.repo.CountReactionsByType(post.ID)
	if err != nil {
		return nil, err
	}
	view.ReactionCounts = counts
	for _, n := range counts {
		view.LikesCount += n
	}

	if viewerID != "" {
		reaction, err := s.repo.GetReaction(post.ID, viewerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if reaction != nil {
			view.ViewerReaction = reaction.Type
		}

		if view.IsSaved, err = s.repo.IsSaved(viewerID, post.ID); err != nil {
			return nil, err
		}
	}

	return view, nil
}

func (s *postService) Get(postID, viewerID string, viewerIsAdmin bool) (*PostView, error) {
	post, err := s.getVisiblePost(postID, viewerID, viewerIsAdmin)
	if err != nil {
		return nil, err
	}
	return s.decorate(post, viewerID)
}

// Update edits the text and, when media is non-nil, replaces the whole
// attachment set. Files dropped from the set are unlinked best-effort.
func (s *postService) Update(ctx context.Context, authorID, postID, content string, media *[]MediaInput) (*model.Post, error) {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrNotAuthor
	}

	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxPostLength {
		return nil, ErrContentTooLong
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	post.Content = content
	if err := s.repo.UpdatePost(post); err != nil {
		return nil, err
	}

	if media != nil {
		kept := make(map[string]bool, len(*media))
		rows := make([]model.PostMedia, 0, len(*media))
		for i, m := range *media {
			kept[m.URL] = true
			rows = append(rows, model.PostMedia{
				URL:       m.URL,
				MediaType: m.MediaType,
				SortOrder: i,
			})
		}
		if err := s.repo.ReplaceMedia(postID, rows); err != nil {
			return nil, err
		}
		if uploader.GlobalUploader != nil {
			for _, old := range post.Media {
				if !kept[old.URL] {
					if err := uploader.GlobalUploader.DeleteFile(old.URL); err != nil {
						logger.Log.Warn("media cleanup failed",
							zap.String("url", old.URL), zap.Error(err))
					}
				}
			}
		}
	}

	return s.repo.GetPostByID(postID)
}

// Delete removes the post, its dependents, and the stored media files.
// Admins may delete anyone's post.
func (s *postService) Delete(userID string, isAdmin bool, postID string) error {
	post, err := s.repo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.AuthorID != userID && !isAdmin {
		return ErrNotAuthor
	}

	if err := s.repo.DeletePostCascade(postID); err != nil {
		return err
	}

	// File cleanup is best effort; orphaned files are not worth failing
	// the request over.
	if uploader.GlobalUploader != nil {
		for _, m := range post.Media {
			if err := uploader.GlobalUploader.DeleteFile(m.URL); err != nil {
				logger.Log.Warn("media cleanup failed",
					zap.String("url", m.URL), zap.Error(err))
			}
		}
	}
	return nil
}

// Feed assembles the home timeline: the viewer's own posts plus posts
// from accounts they follow with an accepted edge, newest first. Admins
// see everything.
func (s *postService) Feed(viewerID string, isAdmin bool, page, limit int) ([]PostView, int64, error) {
	offset := (page - 1) * limit

	var (
		posts []model.Post
		total int64
		err   error
	)

	if isAdmin {
		posts, total, err = s.repo.GetAllPosts(offset, limit)
	} else {
		var authorIDs []string
		authorIDs, err = s.followRepo.ListAcceptedFollowingIDs(viewerID)
		if err != nil {
			return nil, 0, err
		}
		authorIDs = append(authorIDs, viewerID)
		posts, total, err = s.repo.GetFeed(authorIDs, offset, limit)
	}
	if err != nil {
		return nil, 0, err
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		view, err := s.decorate(&posts[i], viewerID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// PublicFeed is the anonymous landing page: newest posts from public
// accounts, capped, no pagination.
func (s *postService) PublicFeed() ([]PostView, error) {
	posts, err := s.repo.GetPublicFeed(publicFeedCap)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		view, err := s.decorate(&posts[i], "")
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// React toggles the viewer's reaction on a post. No reaction creates one;
// the same type removes it; a different type swaps it in place without a
// second notification.
func (s *postService) React(userID, postID, reactionType string) (*ReactResult, error) {
	if !model.ValidReaction(reactionType) {
		return nil, ErrInvalidReaction
	}

	post, err := s.getVisiblePost(postID, userID, false)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetReaction(postID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := &ReactResult{}

	switch {
	case existing == nil:
		reaction := &model.Reaction{PostID: postID, UserID: userID, Type: reactionType}
		if err := s.repo.CreateReaction(reaction); err != nil {
			return nil, err
		}
		result.Reaction = reactionType

		if post.AuthorID != userID {
			actor, err := s.userRepo.GetByID(userID)
			if err != nil {
				return nil, err
			}
			s.dispatch(notifmodel.New(post.AuthorID, userID, notifmodel.TypeLike,
				fmt.Sprintf("%s reacted to your post", actor.DisplayName()), postID))
		}

	case existing.Type == reactionType:
		if err := s.repo.DeleteReaction(existing); err != nil {
			return nil, err
		}
		if post.AuthorID != userID {
			if err := s.notifier.Withdraw(post.AuthorID, userID, postID, notifmodel.TypeLike); err != nil {
				logger.Log.Warn("notification withdrawal failed",
					zap.String("type", notifmodel.TypeLike), zap.Error(err))
			}
		}

	default:
		// Changing type is quiet: the author was already notified once.
		existing.Type = reactionType
		if err := s.repo.UpdateReaction(existing); err != nil {
			return nil, err
		}
		result.Reaction = reactionType
	}

	if result.LikesCount, err = s.repo.CountReactions(postID); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *postService) AddComment(ctx context.Context, authorID, postID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxCommentLength {
		return nil, ErrContentTooLong
	}

	post, err := s.getVisiblePost(postID, authorID, false)
	if err != nil {
		return nil, err
	}

	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}

	if _, err := s.repo.RefreshCommentsCount(postID); err != nil {
		return nil, err
	}

	if post.AuthorID != authorID {
		actor, err := s.userRepo.GetByID(authorID)
		if err != nil {
			return nil, err
		}
		s.dispatch(notifmodel.New(post.AuthorID, authorID, notifmodel.TypeComment,
			fmt.Sprintf("%s commented on your post", actor.DisplayName()), postID))
	}

	return s.repo.GetCommentByID(comment.ID)
}

func (s *postService) UpdateComment(ctx context.Context, authorID, commentID, content string) (*model.Comment, error) {
	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, ErrNotAuthor
	}

	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxCommentLength {
		return nil, ErrContentTooLong
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.repo.UpdateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment is allowed for the comment author, the post author and
// admins. When someone else removes it, the comment author is told.
func (s *postService) DeleteComment(userID string, isAdmin bool, commentID string) error {
	comment, err := s.repo.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	post, err := s.repo.GetPostByID(comment.PostID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID && post.AuthorID != userID && !isAdmin {
		return ErrNotAuthor
	}

	if err := s.repo.DeleteComment(comment); err != nil {
		return err
	}
	if _, err := s.repo.RefreshCommentsCount(comment.PostID); err != nil {
		return err
	}

	if comment.AuthorID != userID {
		s.dispatch(notifmodel.New(comment.AuthorID, userID, notifmodel.TypeCommentDeleted,
			"One of your comments was removed", comment.PostID))
	}
	return nil
}

// dispatch is best effort; a notification failure never fails the post
// operation itself, it is logged and dropped.
func (s *postService) dispatch(n *notifmodel.Notification) {
	if err := s.notifier.Dispatch(n); err != nil {
		logger.Log.Warn("notification dispatch failed",
			zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *postService) ListComments(postID, viewerID string, viewerIsAdmin bool, page, limit int) ([]model.Comment, int64, error) {
	if _, err := s.getVisiblePost(postID, viewerID, viewerIsAdmin); err != nil {
		return nil, 0, err
	}
	return s.repo.GetComments(postID, (page-1)*limit, limit)
}

func (s *postService) Save(userID, postID string) error {
	if _, err := s.getVisiblePost(postID, userID, false); err != nil {
		return err
	}

	saved, err := s.repo.IsSaved(userID, postID)
	if err != nil {
		return err
	}
	if saved {
		return ErrAlreadySaved
	}

	return s.repo.SavePost(&model.SavedPost{UserID: userID, PostID: postID})
}

func (s *postService) Unsave(userID, postID string) error {
	return s.repo.UnsavePost(userID, postID)
}

func (s *postService) SavedPosts(userID string, page, limit int) ([]model.Post, int64, error) {
	return s.repo.GetSavedPosts(userID, (page-1)*limit, limit)
}
