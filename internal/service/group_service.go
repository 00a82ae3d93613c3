package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Marcus0035/Looksy/internal/domain"
)

// groupRepository is the subset of store.GroupStore that GroupService requires.
type groupRepository interface {
	Create(ctx context.Context, name string, memberIDs []int64) (*domain.Group, error)
	GetByID(ctx context.Context, id int64) (*domain.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
	SetMembers(ctx context.Context, groupID int64, memberIDs []int64) error
	SummariesByUserID(ctx context.Context, userID int64) ([]*domain.GroupSummary, error)
	Delete(ctx context.Context, id int64) error
}

type GroupService struct {
	groups groupRepository
	logger *slog.Logger
}

func NewGroupService(groups groupRepository, logger *slog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

// Create makes a group containing the creator plus the given members.
func (s *GroupService) Create(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("group name is required: %w", domain.ErrInvalidInput)
	}

	members := memberIDs
	if !contains(members, creatorID) {
		members = append([]int64{creatorID}, members...)
	}

	group, err := s.groups.Create(ctx, name, members)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	s.logger.Info("group created", "group_id", group.ID, "creator_id", creatorID, "members", len(members))
	return group, nil
}

// Members returns the group's member ids if the caller belongs to the group.
func (s *GroupService) Members(ctx context.Context, userID, groupID int64) ([]int64, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.groups.MemberIDs(ctx, groupID)
}

// ChangeMembers replaces the group's member set. Only current members may do
// this.
func (s *GroupService) ChangeMembers(ctx context.Context, userID, groupID int64, memberIDs []int64) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.groups.SetMembers(ctx, groupID, memberIDs); err != nil {
		return fmt.Errorf("failed to change members: %w", err)
	}
	s.logger.Info("group members changed", "group_id", groupID, "by_user_id", userID, "members", len(memberIDs))
	return nil
}

// SummariesForUser lists the caller's groups with member and photo counts.
func (s *GroupService) SummariesForUser(ctx context.Context, userID int64) ([]*domain.GroupSummary, error) {
	return s.groups.SummariesByUserID(ctx, userID)
}

// Delete removes the group and, by cascade, its photo records. Only current
// members may do this.
func (s *GroupService) Delete(ctx context.Context, userID, groupID int64) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	s.logger.Info("group deleted", "group_id", groupID, "by_user_id", userID)
	return nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID int64) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
	}

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return fmt.Errorf("user %d is not a member of group %d: %w", userID, groupID, domain.ErrForbidden)
	}
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
