package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Marcus0035/Looksy/internal/blobstore"
	"github.com/Marcus0035/Looksy/internal/domain"
)

// photoRepository is the subset of store.PhotoStore that PhotoService requires.
type photoRepository interface {
	Create(ctx context.Context, groupID, uploaderID int64, description string) (*domain.Photo, error)
	SetStorageReference(ctx context.Context, id int64, storageKey, url string) error
	GetByID(ctx context.Context, id int64) (*domain.Photo, error)
	LatestByGroupID(ctx context.Context, groupID int64) (*domain.Photo, error)
	ListByGroupID(ctx context.Context, groupID int64) ([]*domain.Photo, error)
	Delete(ctx context.Context, id int64) error
}

// membershipIndex is the subset of store.GroupStore that PhotoService requires.
// Membership is read fresh on every call; revocations take effect immediately.
type membershipIndex interface {
	GetByID(ctx context.Context, id int64) (*domain.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// PhotoService gates every photo operation on current group membership and
// coordinates the metadata store with the object store.
type PhotoService struct {
	photos photoRepository
	groups membershipIndex
	blobs  blobstore.Store
	logger *slog.Logger
}

func NewPhotoService(photos photoRepository, groups membershipIndex, blobs blobstore.Store, logger *slog.Logger) *PhotoService {
	return &PhotoService{
		photos: photos,
		groups: groups,
		blobs:  blobs,
		logger: logger,
	}
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload runs the two-phase upload protocol: create a transient metadata
// record to obtain a stable id, upload the bytes under a key derived from
// that id, then resolve the record to the resulting URL. If the byte upload
// fails the record is left orphaned and the storage error is returned; there
// is no compensating delete.
func (s *PhotoService) Upload(ctx context.Context, userID, groupID int64, description, ext, contentType string, r io.Reader, size int64) (*domain.Photo, error) {
	if groupID < 1 {
		return nil, fmt.Errorf("group id is required: %w", domain.ErrInvalidInput)
	}
	if r == nil || size <= 0 {
		return nil, fmt.Errorf("photo file is required: %w", domain.ErrInvalidInput)
	}
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file extension %q: %w", ext, domain.ErrInvalidInput)
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	s.logger.Info("photo upload started", "group_id", groupID, "user_id", userID, "bytes", size)

	photo, err := s.photos.Create(ctx, groupID, userID, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	key := fmt.Sprintf("%d/%d%s", groupID, photo.ID, ext)
	url, err := s.blobs.Upload(ctx, key, contentType, r, size)
	if err != nil {
		// The transient record stays behind; operators reconcile orphans
		// out of band using this log line.
		s.logger.Warn("byte upload failed, metadata record orphaned",
			"photo_id", photo.ID, "group_id", groupID, "key", key, "error", err)
		return nil, fmt.Errorf("failed to upload photo bytes: %w", err)
	}

	if err := s.photos.SetStorageReference(ctx, photo.ID, key, url); err != nil {
		return nil, fmt.Errorf("failed to resolve photo record: %w", err)
	}
	photo.StorageKey = key
	photo.URL = url

	s.logger.Info("photo upload complete", "photo_id", photo.ID, "group_id", groupID, "key", key)
	return photo, nil
}

// Get returns the photo's metadata if the caller is currently a member of
// its group.
func (s *PhotoService) Get(ctx context.Context, userID, photoID int64) (*domain.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return nil, fmt.Errorf("photo %d: %w", photoID, domain.ErrNotFound)
	}

	if err := s.requireMember(ctx, photo.GroupID, userID); err != nil {
		return nil, err
	}
	return photo, nil
}

// List returns the group's photos, newest first, if the caller is a member.
func (s *PhotoService) List(ctx context.Context, userID, groupID int64) ([]*domain.Photo, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.photos.ListByGroupID(ctx, groupID)
}

// LatestURL mints a fresh signed read URL for the most recent photo in the
// group. Every call produces a new URL with its own expiry.
func (s *PhotoService) LatestURL(ctx context.Context, userID, groupID int64) (string, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return "", err
	}

	photo, err := s.photos.LatestByGroupID(ctx, groupID)
	if err != nil {
		return "", fmt.Errorf("failed to get latest photo: %w", err)
	}
	if photo == nil {
		return "", fmt.Errorf("group %d has no photos: %w", groupID, domain.ErrNotFound)
	}

	url, err := s.blobs.SignedURL(ctx, photo.StorageKey, blobstore.DefaultSignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign url for photo %d: %w", photo.ID, err)
	}
	return url, nil
}

// Delete removes the photo's metadata record if the caller is a member of
// its group. The storage object is removed best-effort; a failure there is
// logged but does not fail the delete.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID int64) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return fmt.Errorf("photo %d: %w", photoID, domain.ErrNotFound)
	}

	if err := s.requireMember(ctx, photo.GroupID, userID); err != nil {
		return err
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}

	if photo.Resolved() {
		if err := s.blobs.Delete(ctx, photo.StorageKey); err != nil {
			s.logger.Error("failed to delete photo object", "key", photo.StorageKey, "error", err)
		}
	}
	return nil
}

// requireMember fails with ErrNotFound if the group does not exist and
// ErrForbidden if the user is not currently a member.
func (s *PhotoService) requireMember(ctx context.Context, groupID, userID int64) error {
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
