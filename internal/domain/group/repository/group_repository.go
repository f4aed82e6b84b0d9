package repository

import (
	"microsocial/internal/domain/group/model"

	"gorm.io/gorm"
)

// GroupRepository is the persistence interface for groups, memberships,
// join requests and the message board.
type GroupRepository interface {
	CreateGroupWithOwner(group *model.Group) error
	GetGroupByID(id string) (*model.Group, error)
	UpdateGroup(group *model.Group) error
	DeleteGroupCascade(groupID string) error
	ListGroups(offset, limit int) ([]model.Group, int64, error)
	SearchGroups(query string, limit int) ([]model.Group, error)
	CountGroups() (int64, error)

	GetMember(groupID, userID string) (*model.GroupMember, error)
	ListMembers(groupID string) ([]model.GroupMember, error)
	ListMembersPage(groupID string, offset, limit int) ([]model.GroupMember, int64, error)
	CreateMember(member *model.GroupMember) error
	UpdateMember(member *model.GroupMember) error
	DeleteMember(member *model.GroupMember) error
	CountMembers(groupID string) (int64, error)
	ListMembershipGroupIDs(userID string) ([]string, error)
	TransferOwnership(groupID, departingUserID, successorID string) error

	CreateJoinRequest(request *model.GroupJoinRequest) error
	GetJoinRequest(groupID, userID string) (*model.GroupJoinRequest, error)
	GetJoinRequestByID(id string) (*model.GroupJoinRequest, error)
	ListJoinRequests(groupID string) ([]model.GroupJoinRequest, error)
	CountJoinRequests(groupID string) (int64, error)
	DeleteJoinRequest(request *model.GroupJoinRequest) error

	CreateMessage(message *model.GroupMessage) error
	GetMessageByID(id string) (*model.GroupMessage, error)
	UpdateMessage(message *model.GroupMessage) error
	DeleteMessage(message *model.GroupMessage) error
	ListMessages(groupID string, offset, limit int) ([]model.GroupMessage, int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// CreateGroupWithOwner creates the group and the owner's membership row
// in one transaction.
func (r *groupRepository) CreateGroupWithOwner(group *model.Group) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner := &model.GroupMember{
			GroupID: group.ID,
			UserID:  group.OwnerID,
			Role:    model.RoleModerator,
		}
		return tx.Create(owner).Error
	})
}

func (r *groupRepository) GetGroupByID(id string) (*model.Group, error) {
	var group model.Group
	if err := r.db.Preload("Owner").Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) UpdateGroup(group *model.Group) error {
	return r.db.Omit("Owner").Save(group).Error
}

// DeleteGroupCascade removes the group and all dependent rows.
func (r *groupRepository) DeleteGroupCascade(groupID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("group_id = ?", groupID).Delete(&model.GroupMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("group_id = ?", groupID).Delete(&model.GroupJoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("group_id = ?", groupID).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", groupID).Delete(&model.Group{}).Error
	})
}

func (r *groupRepository) ListGroups(offset, limit int) ([]model.Group, int64, error) {
	var groups []model.Group
	var total int64

	if err := r.db.Model(&model.Group{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Preload("Owner").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&groups).Error
	return groups, total, err
}

func (r *groupRepository) SearchGroups(query string, limit int) ([]model.Group, error) {
	var groups []model.Group
	pattern := "%" + query + "%"
	err := r.db.
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&groups).Error
	return groups, err
}

func (r *groupRepository) CountGroups() (int64, error) {
	var count int64
	err := r.db.Model(&model.Group{}).Count(&count).Error
	return count, err
}

func (r *groupRepository) GetMember(groupID, userID string) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *groupRepository) ListMembers(groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *groupRepository) ListMembersPage(groupID string, offset, limit int) ([]model.GroupMember, int64, error) {
	var members []model.GroupMember
	var total int64

	base := r.db.Model(&model.GroupMember{}).Where("group_id = ?", groupID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("User").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error
	return members, total, err
}

func (r *groupRepository) CreateMember(member *model.GroupMember) error {
	return r.db.Create(member).Error
}

func (r *groupRepository) UpdateMember(member *model.GroupMember) error {
	return r.db.Omit("User").Save(member).Error
}

func (r *groupRepository) DeleteMember(member *model.GroupMember) error {
	// Hard delete so the user can rejoin later.
	return r.db.Unscoped().Delete(member).Error
}

func (r *groupRepository) CountMembers(groupID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *groupRepository) ListMembershipGroupIDs(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

// TransferOwnership hands the group to the successor and removes the
// departing user's membership, atomically.
func (r *groupRepository) TransferOwnership(groupID, departingUserID, successorID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Group{}).Where("id = ?", groupID).
			Update("owner_id", successorID).Error
		if err != nil {
			return err
		}
		return tx.Unscoped().
			Where("group_id = ? AND user_id = ?", groupID, departingUserID).
			Delete(&model.GroupMember{}).Error
	})
}

func (r *groupRepository) CreateJoinRequest(request *model.GroupJoinRequest) error {
	return r.db.Create(request).Error
}

func (r *groupRepository) GetJoinRequest(groupID, userID string) (*model.GroupJoinRequest, error) {
	var request model.GroupJoinRequest
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *groupRepository) GetJoinRequestByID(id string) (*model.GroupJoinRequest, error) {
	var request model.GroupJoinRequest
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *groupRepository) ListJoinRequests(groupID string) ([]model.GroupJoinRequest, error) {
	var requests []model.GroupJoinRequest
	err := r.db.
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *groupRepository) CountJoinRequests(groupID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.GroupJoinRequest{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

func (r *groupRepository) DeleteJoinRequest(request *model.GroupJoinRequest) error {
	return r.db.Unscoped().Delete(request).Error
}

func (r *groupRepository) CreateMessage(message *model.GroupMessage) error {
	return r.db.Create(message).Error
}

func (r *groupRepository) GetMessageByID(id string) (*model.GroupMessage, error) {
	var message model.GroupMessage
	if err := r.db.Preload("Sender").Where("id = ?", id).First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *groupRepository) UpdateMessage(message *model.GroupMessage) error {
	return r.db.Omit("Sender").Save(message).Error
}

func (r *groupRepository) DeleteMessage(message *model.GroupMessage) error {
	return r.db.Unscoped().Delete(message).Error
}

func (r *groupRepository) ListMessages(groupID string, offset, limit int) ([]model.GroupMessage, int64, error) {
	var messages []model.GroupMessage
	var total int64

	base := r.db.Model(&model.GroupMessage{}).Where("group_id = ?", groupID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Sender").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, total, err
}
