package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Marcus0035/Looksy/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

// Create inserts a transient photo record (no storage reference yet) and
// returns it with its store-assigned id.
func (s *PhotoStore) Create(ctx context.Context, groupID, uploaderID int64, description string) (*domain.Photo, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (group_id, uploaded_by, description) VALUES (?, ?, ?)
	`, groupID, uploaderID, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// SetStorageReference resolves a transient record to the given storage key
// and URL.
func (s *PhotoStore) SetStorageReference(ctx context.Context, id int64, storageKey, url string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE photos SET storage_key = ?, url = ? WHERE id = ?
	`, storageKey, url, id)
	if err != nil {
		return fmt.Errorf("failed to set storage reference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("photo %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, uploaded_by, description, storage_key, url, uploaded_at
		FROM photos WHERE id = ?
	`, id).Scan(&photo.ID, &photo.GroupID, &photo.UploadedBy, &photo.Description,
		&photo.StorageKey, &photo.URL, &photo.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// LatestByGroupID returns the resolved photo with the greatest id in the
// group, or nil if the group has no resolved photos. Ids are monotonic, so
// the greatest id is the most recently created record; transient rows are
// skipped because they have no bytes to reference.
func (s *PhotoStore) LatestByGroupID(ctx context.Context, groupID int64) (*domain.Photo, error) {
	photo := &domain.Photo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, uploaded_by, description, storage_key, url, uploaded_at
		FROM photos WHERE group_id = ? AND storage_key <> ''
		ORDER BY id DESC LIMIT 1
	`, groupID).Scan(&photo.ID, &photo.GroupID, &photo.UploadedBy, &photo.Description,
		&photo.StorageKey, &photo.URL, &photo.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest photo: %w", err)
	}

	return photo, nil
}

// ListByGroupID returns all photo records in the group, newest first.
func (s *PhotoStore) ListByGroupID(ctx context.Context, groupID int64) ([]*domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, uploaded_by, description, storage_key, url, uploaded_at
		FROM photos WHERE group_id = ? ORDER BY id DESC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(&photo.ID, &photo.GroupID, &photo.UploadedBy, &photo.Description,
			&photo.StorageKey, &photo.URL, &photo.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("photo %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
