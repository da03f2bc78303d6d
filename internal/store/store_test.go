package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/ad-user-import/internal/attribute"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return New(db), mock
}

func TestUserRepo_IDByEmail_Found(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM admin_users WHERE email=$1`)).
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, found, err := s.Users.IDByEmail(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IDByEmail_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM admin_users WHERE email=$1`)).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := s.Users.IDByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_ReturnsID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO admin_users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	u := &AdminUser{
		AccessCode:    "G1",
		LastName:      "Doe",
		FirstName:     "Jane",
		Email:         "jane@x.com",
		Status:        1,
		Locale:        "en",
		Level:         2,
		Accessibility: true,
		ResetPassword: true,
		AccountMax:    time.Now().AddDate(0, 12, 0),
		LastLogin:     time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := s.Users.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, int64(11), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE admin_users SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Users.Update(context.Background(), &AdminUser{ID: 7, Email: "jane@x.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update_MissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE admin_users SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Users.Update(context.Background(), &AdminUser{ID: 99})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	s, mock := newMockStore(t)

	lastLogin := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "access_code", "last_name", "first_name", "email", "status",
		"locale", "level", "accessibility", "reset_password",
		"account_max_valid_date", "last_login",
	}).AddRow(7, "G1", "Doe", "Jane", "jane@x.com", 1, "en", 2, true, false, lastLogin, lastLogin)

	mock.ExpectQuery(`SELECT id, access_code`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	u, err := s.Users.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "G1", u.AccessCode)
	assert.Equal(t, "jane@x.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepo_DeleteAndGrant(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM admin_user_rights WHERE user_id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM admin_user_roles WHERE user_id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO admin_user_rights`).
		WithArgs(int64(7), "EDIT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO admin_user_roles`).
		WithArgs(int64(7), "EDITOR").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO workgroup_members`).
		WithArgs("finance", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, s.Assignments.DeleteRights(ctx, 7))
	require.NoError(t, s.Assignments.DeleteRoles(ctx, 7))
	require.NoError(t, s.Assignments.GrantRight(ctx, 7, "EDIT"))
	require.NoError(t, s.Assignments.GrantRole(ctx, 7, "EDITOR"))
	require.NoError(t, s.Assignments.AddWorkgroupMember(ctx, "finance", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldRepo_DeleteAndCreate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM admin_user_fields WHERE user_id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO admin_user_fields`).
		WithArgs(int64(7), int64(42), int64(0), "hello").
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := context.Background()
	require.NoError(t, s.Fields.DeleteFields(ctx, 7))
	require.NoError(t, s.Fields.CreateField(ctx, attribute.FieldValue{
		AttributeID: 42,
		UserID:      7,
		SubFieldID:  0,
		Value:       "hello",
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFieldRepo_FieldsByUser(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"user_id", "attribute_id", "sub_field_id", "value"}).
		AddRow(7, 42, 0, "hello").
		AddRow(7, 42, 7, "world")

	mock.ExpectQuery(`SELECT user_id, attribute_id`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	fields, err := s.Fields.FieldsByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, int64(42), fields[0].AttributeID)
	assert.Equal(t, int64(7), fields[1].SubFieldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
