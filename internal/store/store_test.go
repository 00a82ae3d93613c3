package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Marcus0035/Looksy/internal/db"
	"github.com/Marcus0035/Looksy/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createTestUser(t *testing.T, users *UserStore, username string) *domain.User {
	t.Helper()
	user, err := users.Create(context.Background(), username, username+"@example.com", "", "", "hash")
	require.NoError(t, err)
	return user
}

func createTestGroup(t *testing.T, groups *GroupStore, name string, memberIDs ...int64) *domain.Group {
	t.Helper()
	group, err := groups.Create(context.Background(), name, memberIDs)
	require.NoError(t, err)
	return group
}
