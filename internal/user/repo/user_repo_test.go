package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mohirdev/delivery-api/internal/user/entity"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreate(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("ali", "a@x.com", "hash", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	u := &entity.User{Username: "ali", Email: "a@x.com", PasswordHash: "hash", IsActive: true, IsStaff: false}
	err := r.Create(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIdentifier(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_active", "is_staff", "created_at"}).
		AddRow(int64(1), "ali", "a@x.com", "hash", true, false, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, is_active, is_staff, created_at FROM users WHERE username=$1 OR email=LOWER($1)`)).
		WithArgs("A@X.com").
		WillReturnRows(rows)

	u, err := r.GetByIdentifier(context.Background(), "A@X.com")
	require.NoError(t, err)
	require.Equal(t, "ali", u.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsername_NoRows(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username=$1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByEmail(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := r.ExistsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
