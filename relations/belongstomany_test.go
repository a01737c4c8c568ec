package relations

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steward-admin/steward/resource"
)

func rolesResource() resource.Resource {
	return resource.Define("roles").WithSearch("name")
}

func TestBelongsToManyPivotDefaults(t *testing.T) {
	f := BelongsToMany("Roles", rolesResource())
	table, parentKey, relatedKey := f.pivot(usersResource())

	// Model names in alphabetical order
	assert.Equal(t, "role_user", table)
	assert.Equal(t, "user_id", parentKey)
	assert.Equal(t, "role_id", relatedKey)
}

func TestBelongsToManyPivotOverrides(t *testing.T) {
	f := BelongsToMany("Roles", rolesResource()).
		PivotTable("memberships").
		Keys("member_id", "grant_id")

	table, parentKey, relatedKey := f.pivot(usersResource())
	assert.Equal(t, "memberships", table)
	assert.Equal(t, "member_id", parentKey)
	assert.Equal(t, "grant_id", relatedKey)
}

func TestBelongsToManyRelated(t *testing.T) {
	mock, db := newMock(t)
	f := BelongsToMany("Roles", rolesResource())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM roles INNER JOIN role_user ON roles.id = role_user.role_id WHERE role_user.user_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT roles.* FROM roles INNER JOIN role_user ON roles.id = role_user.role_id WHERE role_user.user_id = ? LIMIT ? OFFSET ?")).
		WithArgs(1, 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "admin").AddRow(2, "editor"))

	page, err := f.Related(context.Background(), db, usersResource(), 1, Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)
	assert.Equal(t, "admin", page.Data[0]["name"])
}

func TestBelongsToManyAttachSkipsExisting(t *testing.T) {
	mock, db := newMock(t)
	f := BelongsToMany("Roles", rolesResource())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT role_id FROM role_user WHERE user_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_user (user_id, role_id) VALUES (?, ?)")).
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := f.Attach(context.Background(), db, usersResource(), 1, []any{2, 3}, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "already-attached id 2 is not re-inserted")
}

func TestBelongsToManyAttachWithPivotAttributes(t *testing.T) {
	mock, db := newMock(t)
	f := BelongsToMany("Roles", rolesResource()).AllowDuplicates()

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO role_user (user_id, role_id, expires_at, granted_by) VALUES (?, ?, ?, ?)")).
		WithArgs(1, 2, "2026-01-01", "admin").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := f.Attach(context.Background(), db, usersResource(), 1, []any{2},
		resource.Record{"granted_by": "admin", "expires_at": "2026-01-01"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBelongsToManyDetach(t *testing.T) {
	t.Run("specific ids", func(t *testing.T) {
		mock, db := newMock(t)
		f := BelongsToMany("Roles", rolesResource())

		mock.ExpectExec(regexp.QuoteMeta(
			"DELETE FROM role_user WHERE user_id = ? AND role_id IN (?, ?)")).
			WithArgs(1, 2, 3).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, f.Detach(context.Background(), db, usersResource(), 1, []any{2, 3}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all", func(t *testing.T) {
		mock, db := newMock(t)
		f := BelongsToMany("Roles", rolesResource())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM role_user WHERE user_id = ?")).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 5))

		require.NoError(t, f.Detach(context.Background(), db, usersResource(), 1, nil))
	})
}

func TestBelongsToManySync(t *testing.T) {
	mock, db := newMock(t)
	f := BelongsToMany("Roles", rolesResource())

	// Currently attached: 1, 2. Target set: 2, 3.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role_id FROM role_user WHERE user_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(1).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM role_user WHERE user_id = ? AND role_id IN (?)")).
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Attach re-checks attachments before inserting
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role_id FROM role_user WHERE user_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_user (user_id, role_id) VALUES (?, ?)")).
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := f.Sync(context.Background(), db, usersResource(), 1, []any{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{3}, result.Attached)
	assert.Equal(t, []any{int64(1)}, result.Detached)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBelongsToManyUpdatePivot(t *testing.T) {
	mock, db := newMock(t)
	f := BelongsToMany("Roles", rolesResource())

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE role_user SET expires_at = ? WHERE user_id = ? AND role_id = ?")).
		WithArgs("2027-01-01", 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := f.UpdatePivot(context.Background(), db, usersResource(), 1, 2,
		resource.Record{"expires_at": "2027-01-01"})
	require.NoError(t, err)

	assert.Error(t, f.UpdatePivot(context.Background(), db, usersResource(), 1, 2, nil),
		"empty attribute set is rejected")
}

func TestBelongsToManyAttachable(t *testing.T) {
	t.Run("excludes attached ids", func(t *testing.T) {
		mock, db := newMock(t)
		f := BelongsToMany("Roles", rolesResource())

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT COUNT(*) FROM roles WHERE id NOT IN (SELECT role_id FROM role_user WHERE user_id = ?)")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT * FROM roles WHERE id NOT IN (SELECT role_id FROM role_user WHERE user_id = ?) LIMIT ? OFFSET ?")).
			WithArgs(1, 25, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "viewer"))

		page, err := f.Attachable(context.Background(), db, usersResource(), 1, Params{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "viewer", page.Data[0]["name"])
	})

	t.Run("duplicates allowed lists everything", func(t *testing.T) {
		mock, db := newMock(t)
		f := BelongsToMany("Roles", rolesResource()).AllowDuplicates()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM roles LIMIT ? OFFSET ?")).
			WithArgs(25, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(1, "admin").AddRow(2, "editor").AddRow(3, "viewer"))

		page, err := f.Attachable(context.Background(), db, usersResource(), 1, Params{})
		require.NoError(t, err)
		assert.Len(t, page.Data, 3)
	})
}

func TestMorphToManyPivotDefaults(t *testing.T) {
	tags := resource.Define("tags")
	f := MorphToMany("Tags", tags, "taggable")

	assert.Equal(t, "taggables", f.table())
	assert.Equal(t, "tag_id", f.relatedColumn())

	custom := MorphToMany("Tags", tags, "taggable").
		PivotTable("tag_links").
		RelatedKey("label_id")
	assert.Equal(t, "tag_links", custom.table())
	assert.Equal(t, "label_id", custom.relatedColumn())
}

func TestMorphToManyAttachDetach(t *testing.T) {
	mock, db := newMock(t)
	tags := resource.Define("tags")
	f := MorphToMany("Tags", tags, "taggable")

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT tag_id FROM taggables WHERE taggable_type = ? AND taggable_id = ?")).
		WithArgs("post", 4).
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO taggables (taggable_type, taggable_id, tag_id) VALUES (?, ?, ?)")).
		WithArgs("post", 4, 7).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, f.Attach(context.Background(), db, postsResource(), 4, []any{7}, nil))

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM taggables WHERE taggable_type = ? AND taggable_id = ? AND tag_id IN (?)")).
		WithArgs("post", 4, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, f.Detach(context.Background(), db, postsResource(), 4, []any{7}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExcludeIDs(t *testing.T) {
	assert.Equal(t, []any{3}, excludeIDs([]any{2, 3}, []any{int64(2)}))
	assert.Nil(t, excludeIDs([]any{1}, []any{1}))
	assert.Equal(t, []any{1, 2}, excludeIDs([]any{1, 2}, nil))
}
