package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microsocial/internal/domain/group/model"
	"microsocial/internal/domain/group/repository"
	notifmodel "microsocial/internal/domain/notification/model"
	notifservice "microsocial/internal/domain/notification/service"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/moderation"
	"microsocial/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrNotMember        = errors.New("you are not a member of this group")
	ErrAlreadyMember    = errors.New("already a member of this group")
	ErrNotOwner         = errors.New("only the group owner can do this")
	ErrNoPermission     = errors.New("insufficient group permissions")
	ErrRequestNotFound  = errors.New("join request not found")
	ErrDuplicateRequest = errors.New("join request already pending")
	ErrMessageNotFound  = errors.New("message not found")
	ErrCannotKickOwner  = errors.New("the owner cannot be removed")
	ErrContentRejected  = errors.New("content was rejected by moderation")
	ErrEmptyContent     = errors.New("content cannot be empty")
)

// GroupInput is the editable slice of a group.
type GroupInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	AvatarURL   string `json:"avatarUrl" binding:"max=500"`
}

// GroupView is a group page: the group, its size and the viewer's place
// in it.
type GroupView struct {
	Group          *model.Group `json:"group"`
	MembersCount   int64        `json:"membersCount"`
	ViewerRole     string       `json:"viewerRole,omitempty"` // empty when not a member
	IsOwner        bool         `json:"isOwner"`
	RequestPending bool         `json:"requestPending"`
	// PendingRequests is filled only for the owner and moderators.
	PendingRequests int64 `json:"pendingRequests,omitempty"`
}

// GroupService covers groups, membership, join approval and the board.
type GroupService interface {
	Create(ownerID string, input GroupInput) (*model.Group, error)
	Get(groupID, viewerID string) (*GroupView, error)
	Update(userID, groupID string, input GroupInput) (*model.Group, error)
	Delete(userID string, isAdmin bool, groupID string) error
	List(page, limit int) ([]model.Group, int64, error)
	Members(groupID, viewerID string, page, limit int) ([]model.GroupMember, int64, error)

	Join(userID, groupID, message string) error
	Leave(userID, groupID string) error
	Kick(actorID, groupID, targetID string) error
	Promote(actorID, groupID, targetID string) error
	Demote(actorID, groupID, targetID string) error

	JoinRequests(actorID, groupID string) ([]model.GroupJoinRequest, error)
	AcceptRequest(actorID, requestID string) error
	RejectRequest(actorID, requestID string) error

	PostMessage(ctx context.Context, userID, groupID, content string) (*model.GroupMessage, error)
	EditMessage(ctx context.Context, userID, messageID, content string) (*model.GroupMessage, error)
	DeleteMessage(userID, messageID string) error
	Messages(userID, groupID string, page, limit int) ([]model.GroupMessage, int64, error)
}

type groupService struct {
	repo      repository.GroupRepository
	userRepo  userrepo.UserRepository
	notifier  notifservice.Notifier
	moderator moderation.Moderator
}

func NewGroupService(repo repository.GroupRepository, userRepo userrepo.UserRepository, notifier notifservice.Notifier, moderator moderation.Moderator) GroupService {
	return &groupService{
		repo:      repo,
		userRepo:  userRepo,
		notifier:  notifier,
		moderator: moderator,
	}
}

func (s *groupService) Create(ownerID string, input GroupInput) (*model.Group, error) {
	if input.Name == "" {
		return nil, ErrEmptyContent
	}

	group := &model.Group{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		AvatarURL:   input.AvatarURL,
	}
	if err := s.repo.CreateGroupWithOwner(group); err != nil {
		return nil, err
	}
	return s.repo.GetGroupByID(group.ID)
}

func (s *groupService) getGroup(groupID string) (*model.Group, error) {
	group, err := s.repo.GetGroupByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) Get(groupID, viewerID string) (*GroupView, error) {
	group, err := s.getGroup(groupID)
	if err != nil {
		return nil, err
	}

	view := &GroupView{
		Group:   group,
		IsOwner: viewerID != "" && viewerID == group.OwnerID,
	}

	if view.MembersCount, err = s.repo.CountMembers(groupID); err != nil {
		return nil, err
	}

	if viewerID != "" {
		member, err := s.repo.GetMember(groupID, viewerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if member != nil {
			view.ViewerRole = member.Role
			if view.IsOwner || member.Role == model.RoleModerator {
				if view.PendingRequests, err = s.repo.CountJoinRequests(groupID); err != nil {
					return nil, err
				}
			}
		} else {
			request, err := s.repo.GetJoinRequest(groupID, viewerID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			view.RequestPending = request != nil
		}
	}

	return view, nil
}

// canManage reports whether userID is the owner or a moderator.
func (s *groupService) canManage(group *model.Group, userID string) (bool, error) {
	if userID == group.OwnerID {
		return true, nil
	}
	member, err := s.repo.GetMember(group.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Role == model.RoleModerator, nil
}

func (s *groupService) Update(userID, groupID string, input GroupInput) (*model.Group, error) {
	group, err := s.getGroup(groupID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canManage(group, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPermission
	}

	if input.Name != "" {
		group.Name = input.Name
	}
	group.Description = input.Description
	if input.AvatarURL != "" {
		group.AvatarURL = input.AvatarURL
	}

	if err := s.repo.UpdateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete tears the group down and tells every member. Owner or platform
// admin only.
func (s *groupService) Delete(userID string, isAdmin bool, groupID string) error {
	group, err := s.getGroup(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != userID && !isAdmin {
		return ErrNotOwner
	}

	members, err := s.repo.ListMembers(groupID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteGroupCascade(groupID); err != nil {
		return err
	}

	// System notice: no actor, no surviving target.
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		s.dispatch(notifmodel.New(m.UserID, "", notifmodel.TypeGroupDeleted,
			fmt.Sprintf("The group %q was deleted", group.Name), ""))
	}
	return nil
}

func (s *groupService) List(page, limit int) ([]model.Group, int64, error) {
	return s.repo.ListGroups((page-1)*limit, limit)
}

// Members is restricted to group members.
func (s *groupService) Members(groupID, viewerID string, page, limit int) ([]model.GroupMember, int64, error) {
	if _, err := s.getGroup(groupID); err != nil {
		return nil, 0, err
	}
	if _, err := s.repo.GetMember(groupID, viewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotMember
		}
		return nil, 0, err
	}
	return s.repo.ListMembersPage(groupID, (page-1)*limit, limit)
}

// Join files a request the owner or a moderator must approve.
func (s *groupService) Join(userID, groupID, message string) error {
	group, err := s.getGroup(groupID)
	if err != nil {
		return err
	}

	if _, err := s.repo.GetMember(groupID, userID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repo.GetJoinRequest(groupID, userID); err == nil {
		return ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	request := &model.GroupJoinRequest{
		GroupID: groupID,
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.CreateJoinRequest(request); err != nil {
		return err
	}

	applicant, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	s.dispatch(notifmodel.New(group.OwnerID, userID, notifmodel.TypeGroupJoinRequest,
		fmt.Sprintf("%s wants to join %q", applicant.DisplayName(), group.Name), groupID))
	return nil
}

// Leave removes the membership. A departing owner hands the group to a
// successor (moderators first, then the longest-standing member); with
// nobody left the group is deleted.
func (s *groupService) Leave(userID, groupID string) error {
	group, err := s.getGroup(groupID)
	if err != nil {
		return err
	}

	member, err := s.repo.GetMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}

	if group.OwnerID != userID {
		return s.repo.DeleteMember(member)
	}

	members, err := s.repo.ListMembers(groupID)
	if err != nil {
		return err
	}

	successor := model.ChooseSuccessor(members, userID)
	if successor == nil {
		return s.repo.DeleteGroupCascade(groupID)
	}

	if err := s.repo.TransferOwnership(groupID, userID, successor.UserID); err != nil {
		return err
	}

	s.dispatch(notifmodel.New(successor.UserID, userID, notifmodel.TypeGroupOwnership,
		fmt.Sprintf("You are now the owner of %q", group.Name), groupID))
	return nil
}

// Kick removes another member. Owner and moderators may kick; the owner
// can only be removed through succession, never kicked.
func (s *groupService) Kick(actorID, groupID, targetID string) error {
	group, err := s.getGroup(groupID)
	if err != nil {
		return err
	}

	ok, err := s.canManage(group, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPermission
	}
	if targetID == group.OwnerID {
		return ErrCannotKickOwner
	}

	member, err := s.repo.GetMember(groupID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}

	// Moderators cannot remove each other; that is the owner's call.
	if member.Role == model.RoleModerator && actorID != group.OwnerID {
		return ErrNoPermission
	}

	return s.repo.DeleteMember(member)
}

func (s *groupService) setRole(actorID, groupID, targetID, role string) error {
	group, err := s.getGroup(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return ErrNotOwner
	}
	if targetID == group.OwnerID {
		return ErrCannotKickOwner
	}

	member, err := s.repo.GetMember(groupID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}

	member.Role = role
	return s.repo.UpdateMember(member)
}

func (s *groupService) Promote(actorID, groupID, targetID string) error {
	return s.setRole(actorID, groupID, targetID, model.RoleModerator)
}

func (s *groupService) Demote(actorID, groupID, targetID string) error {
	return s.setRole(actorID, groupID, targetID, model.RoleMember)
}

func (s *groupService) JoinRequests(actorID, groupID string) ([]model.GroupJoinRequest, error) {
	group, err := s.getGroup(groupID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canManage(group, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPermission
	}

	return s.repo.ListJoinRequests(groupID)
}

// AcceptRequest turns a pending request into a membership.
func (s *groupService) AcceptRequest(actorID, requestID string) error {
	request, err := s.repo.GetJoinRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	group, err := s.getGroup(request.GroupID)
	if err != nil {
		return err
	}

	ok, err := s.canManage(group, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPermission
	}

	member := &model.GroupMember{
		GroupID: request.GroupID,
		UserID:  request.UserID,
		Role:    model.RoleMember,
	}
	if err := s.repo.CreateMember(member); err != nil {
		return err
	}
	if err := s.repo.DeleteJoinRequest(request); err != nil {
		return err
	}

	s.dispatch(notifmodel.New(request.UserID, actorID, notifmodel.TypeGroupJoinAccept,
		fmt.Sprintf("Your request to join %q was accepted", group.Name), group.ID))
	return nil
}

func (s *groupService) RejectRequest(actorID, requestID string) error {
	request, err := s.repo.GetJoinRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	group, err := s.getGroup(request.GroupID)
	if err != nil {
		return err
	}

	ok, err := s.canManage(group, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPermission
	}

	return s.repo.DeleteJoinRequest(request)
}

func (s *groupService) requireMember(groupID, userID string) error {
	if _, err := s.repo.GetMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

func (s *groupService) moderate(ctx context.Context, content string) error {
	verdict, err := s.moderator.Check(ctx, content)
	if err != nil {
		return err
	}
	if !verdict.IsClean {
		return fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}
	return nil
}

func (s *groupService) PostMessage(ctx context.Context, userID, groupID, content string) (*model.GroupMessage, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.getGroup(groupID); err != nil {
		return nil, err
	}
	if err := s.requireMember(groupID, userID); err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	message := &model.GroupMessage{
		GroupID:  groupID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.repo.CreateMessage(message); err != nil {
		return nil, err
	}
	return s.repo.GetMessageByID(message.ID)
}

func (s *groupService) EditMessage(ctx context.Context, userID, messageID, content string) (*model.GroupMessage, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	message, err := s.repo.GetMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if message.SenderID != userID {
		return nil, ErrNoPermission
	}

	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	now := time.Now()
	message.Content = content
	message.EditedAt = &now
	if err := s.repo.UpdateMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage is allowed for the sender, the owner and moderators.
func (s *groupService) DeleteMessage(userID, messageID string) error {
	message, err := s.repo.GetMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if message.SenderID != userID {
		group, err := s.getGroup(message.GroupID)
		if err != nil {
			return err
		}
		ok, err := s.canManage(group, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoPermission
		}
	}

	return s.repo.DeleteMessage(message)
}

func (s *groupService) Messages(userID, groupID string, page, limit int) ([]model.GroupMessage, int64, error) {
	if _, err := s.getGroup(groupID); err != nil {
		return nil, 0, err
	}
	if err := s.requireMember(groupID, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListMessages(groupID, (page-1)*limit, limit)
}

// dispatch is best effort; a notification failure never fails the group
// operation itself, it is logged and dropped.
func (s *groupService) dispatch(n *notifmodel.Notification) {
	if err := s.notifier.Dispatch(n); err != nil {
		logger.Log.Warn("notification dispatch failed",
			zap.String("type", n.Type), zap.Error(err))
	}
}
