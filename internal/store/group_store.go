package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Marcus0035/Looksy/internal/domain"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

// Create inserts a group and its initial member set in one transaction.
// Member ids that do not reference an existing user are skipped.
func (s *GroupStore) Create(ctx context.Context, name string, memberIDs []int64) (*domain.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO groups (name) VALUES (?)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := insertMembers(ctx, tx, id, memberIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *GroupStore) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	group := &domain.Group{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM groups WHERE id = ?
	`, id).Scan(&group.ID, &group.Name, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// IsMember reports whether the user currently belongs to the group. It reads
// live state on every call; membership changes are visible immediately.
func (s *GroupStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?
	`, groupID, userID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// MemberIDs returns the ids of the group's current members. It fails with
// domain.ErrNotFound if the group does not exist.
func (s *GroupStore) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM group_members WHERE group_id = ?
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return ids, nil
}

// SetMembers replaces the group's member set with the given user ids.
// Unknown ids are skipped.
func (s *GroupStore) SetMembers(ctx context.Context, groupID int64, memberIDs []int64) error {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return fmt.Errorf("group %d: %w", groupID, domain.ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ?
	`, groupID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}

	if err := insertMembers(ctx, tx, groupID, memberIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit members: %w", err)
	}
	return nil
}

// SummariesByUserID returns the user's groups with member and photo counts.
func (s *GroupStore) SummariesByUserID(ctx context.Context, userID int64) ([]*domain.GroupSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_at,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id),
			(SELECT COUNT(*) FROM photos p WHERE p.group_id = g.id)
		FROM groups g JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ? ORDER BY g.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.GroupSummary
	for rows.Next() {
		sum := &domain.GroupSummary{}
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.CreatedAt, &sum.MemberCount, &sum.PhotoCount); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group summaries: %w", err)
	}

	return summaries, nil
}

func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM groups WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// insertMembers adds the given users to the group, silently skipping ids
// that do not exist.
func insertMembers(ctx context.Context, tx *sql.Tx, groupID int64, memberIDs []int64) error {
	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO group_members (group_id, user_id)
			SELECT ?, id FROM users WHERE id = ?
		`, groupID, userID); err != nil {
			return fmt.Errorf("failed to add member %d: %w", userID, err)
		}
	}
	return nil
}
