package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marcus0035/Looksy/internal/blobstore"
	"github.com/Marcus0035/Looksy/internal/db"
	"github.com/Marcus0035/Looksy/internal/domain"
	"github.com/Marcus0035/Looksy/internal/store"
)

// stubBlobStore is a minimal in-memory blobstore.Store for tests.
type stubBlobStore struct {
	objects   map[string][]byte
	uploadErr error
	signCount int
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: make(map[string][]byte)}
}

func (s *stubBlobStore) Upload(_ context.Context, key, _ string, r io.Reader, _ int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, _ := io.ReadAll(r)
	s.objects[key] = data
	return "https://blobs.test/" + key, nil
}

func (s *stubBlobStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("%s: %w", key, blobstore.ErrKeyNotFound)
	}
	s.signCount++
	return fmt.Sprintf("https://blobs.test/%s?sig=%d&ttl=%s", key, s.signCount, ttl), nil
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%s: %w", key, blobstore.ErrKeyNotFound)
	}
	delete(s.objects, key)
	return nil
}

type testEnv struct {
	svc    *PhotoService
	users  *store.UserStore
	groups *store.GroupStore
	photos *store.PhotoStore
	blobs  *stubBlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	env := &testEnv{
		users:  store.NewUserStore(d),
		groups: store.NewGroupStore(d),
		photos: store.NewPhotoStore(d),
		blobs:  newStubBlobStore(),
	}
	env.svc = NewPhotoService(env.photos, env.groups, env.blobs, slog.Default())
	return env
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), username, username+"@example.com", "", "", "hash")
	require.NoError(t, err)
	return u
}

func (e *testEnv) group(t *testing.T, name string, memberIDs ...int64) *domain.Group {
	t.Helper()
	g, err := e.groups.Create(context.Background(), name, memberIDs)
	require.NoError(t, err)
	return g
}

func (e *testEnv) upload(t *testing.T, userID, groupID int64) *domain.Photo {
	t.Helper()
	p, err := e.svc.Upload(context.Background(), userID, groupID, "", ".jpg", "image/jpeg",
		strings.NewReader("bytes"), 5)
	require.NoError(t, err)
	return p
}

func TestUploadSucceedsForMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)

	photo, err := env.svc.Upload(context.Background(), alice.ID, group.ID, "first day", ".jpg", "image/jpeg",
		strings.NewReader("fake jpeg"), 9)
	require.NoError(t, err)

	wantKey := fmt.Sprintf("%d/%d.jpg", group.ID, photo.ID)
	assert.Equal(t, wantKey, photo.StorageKey)
	assert.NotEmpty(t, photo.URL)
	assert.True(t, photo.Resolved())
	assert.Equal(t, []byte("fake jpeg"), env.blobs.objects[wantKey])

	// The persisted record is resolved too.
	got, err := env.photos.GetByID(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, wantKey, got.StorageKey)
}

func TestUploadKeysNeverCollide(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		photo := env.upload(t, alice.ID, group.ID)
		assert.False(t, seen[photo.StorageKey], "key %s reused", photo.StorageKey)
		seen[photo.StorageKey] = true
	}
}

func TestUploadForbiddenForNonMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	group := env.group(t, "Trip", alice.ID)

	_, err := env.svc.Upload(context.Background(), mallory.ID, group.ID, "", ".jpg", "image/jpeg",
		strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// No metadata record may exist after a forbidden upload.
	list, err := env.photos.ListByGroupID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadGroupNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	_, err := env.svc.Upload(context.Background(), alice.ID, 99999, "", ".jpg", "image/jpeg",
		strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUploadRejectsBadInputBeforeIO(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)
	ctx := context.Background()

	_, err := env.svc.Upload(ctx, alice.ID, 0, "", ".jpg", "image/jpeg", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.svc.Upload(ctx, alice.ID, group.ID, "", ".jpg", "image/jpeg", nil, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.svc.Upload(ctx, alice.ID, group.ID, "", ".exe", "image/jpeg", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	list, err := env.photos.ListByGroupID(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadStorageFailureLeavesOrphan(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)
	env.blobs.uploadErr = fmt.Errorf("backend down: %w", blobstore.ErrUnavailable)

	_, err := env.svc.Upload(context.Background(), alice.ID, group.ID, "", ".jpg", "image/jpeg",
		strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, blobstore.ErrUnavailable))

	// The transient record stays behind, unresolved: no rollback.
	list, err := env.photos.ListByGroupID(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Resolved())
}

func TestGetPhoto(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	mallory := env.user(t, "mallory")
	group := env.group(t, "Trip", alice.ID, bob.ID)
	photo := env.upload(t, alice.ID, group.ID)
	ctx := context.Background()

	// Any current member can read, not just the uploader.
	got, err := env.svc.Get(ctx, bob.ID, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, got.ID)

	_, err = env.svc.Get(ctx, mallory.ID, photo.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = env.svc.Get(ctx, alice.ID, 99999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLatestURLReturnsHighestID(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)
	ctx := context.Background()

	env.upload(t, alice.ID, group.ID)
	env.upload(t, alice.ID, group.ID)
	p3 := env.upload(t, alice.ID, group.ID)

	url, err := env.svc.LatestURL(ctx, alice.ID, group.ID)
	require.NoError(t, err)
	assert.Contains(t, url, p3.StorageKey)
}

func TestLatestURLMintsFreshURLs(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)
	ctx := context.Background()

	env.upload(t, alice.ID, group.ID)

	first, err := env.svc.LatestURL(ctx, alice.ID, group.ID)
	require.NoError(t, err)
	second, err := env.svc.LatestURL(ctx, alice.ID, group.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLatestURLEmptyGroup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Empty", alice.ID)

	_, err := env.svc.LatestURL(context.Background(), alice.ID, group.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLatestURLForbiddenForNonMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	group := env.group(t, "Trip", alice.ID)
	env.upload(t, alice.ID, group.ID)

	_, err := env.svc.LatestURL(context.Background(), mallory.ID, group.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDeletePhoto(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	group := env.group(t, "Trip", alice.ID)
	photo := env.upload(t, alice.ID, group.ID)
	ctx := context.Background()

	require.NoError(t, env.svc.Delete(ctx, alice.ID, photo.ID))

	// Gone from listing and latest; the blob went too.
	list, err := env.photos.ListByGroupID(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = env.svc.LatestURL(ctx, alice.ID, group.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, env.blobs.objects)

	// Second delete of the same id.
	err = env.svc.Delete(ctx, alice.ID, photo.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteForbiddenForNonMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	group := env.group(t, "Trip", alice.ID)
	photo := env.upload(t, alice.ID, group.ID)

	err := env.svc.Delete(context.Background(), mallory.ID, photo.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestMembershipRevocationTakesEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	group := env.group(t, "Trip", alice.ID, bob.ID)
	photo := env.upload(t, alice.ID, group.ID)
	ctx := context.Background()

	// Alice had access before the revocation.
	_, err := env.svc.Get(ctx, alice.ID, photo.ID)
	require.NoError(t, err)

	require.NoError(t, env.groups.SetMembers(ctx, group.ID, []int64{bob.ID}))

	_, err = env.svc.Get(ctx, alice.ID, photo.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	err = env.svc.Delete(ctx, alice.ID, photo.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = env.svc.LatestURL(ctx, alice.ID, group.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = env.svc.Upload(ctx, alice.ID, group.ID, "", ".jpg", "image/jpeg", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListPhotos(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	group := env.group(t, "Trip", alice.ID)
	ctx := context.Background()

	first := env.upload(t, alice.ID, group.ID)
	second := env.upload(t, alice.ID, group.ID)

	list, err := env.svc.List(ctx, alice.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = env.svc.List(ctx, mallory.ID, group.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
