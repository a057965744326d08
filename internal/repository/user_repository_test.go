package repository_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"auth-session-server/config"
	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"uuid", "email", "password_hash", "name", "phone_number", "profile_image_url",
	"status", "marketing_agreed", "last_login_at", "created_at", "updated_at", "deleted_at",
}

func newMockRepo(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := repository.NewUserRepository(&config.Database{DB: sqlxDB})

	return repo, mock, func() { _ = db.Close() }
}

func userRow(uuid, email string) []driver.Value {
	now := time.Now()
	return []driver.Value{uuid, email, "hash", "Иван", nil, nil, model.UserStatusActive, false, nil, now, now, nil}
}

// 1. Успешная вставка возвращает созданную запись
func TestCreateUser(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "test@example.com", "hash", "Иван", nil, model.UserStatusActive, false).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow("u1", "test@example.com")...))

	created, err := repo.CreateUser(context.Background(), &model.User{
		UUID:         "u1",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Иван",
		Status:       model.UserStatusActive,
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", created.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 2. Нарушение уникальности email переводится в доменную ошибку
func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), &model.User{
		UUID:   "u1",
		Email:  "taken@example.com",
		Status: model.UserStatusActive,
	})

	assert.ErrorIs(t, err, apperror.ErrEmailAlreadyExists)
}

// 3. Отсутствующий пользователь — nil без ошибки
func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectQuery(`SELECT \* FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	assert.Nil(t, user)
}

// 4. Найденный пользователь сканируется целиком
func TestFindByUUID(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectQuery(`SELECT \* FROM users WHERE uuid`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userRow("u1", "test@example.com")...))

	user, err := repo.FindByUUID(context.Background(), "u1")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, model.UserStatusActive, user.Status)
}

// 5. EmailExists
func TestEmailExists(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "taken@example.com")

	assert.NoError(t, err)
	assert.True(t, exists)
}

// 6. Логическое удаление переводит статус в WITHDRAWN
func TestSoftDelete(t *testing.T) {
	repo, mock, closeFn := newMockRepo(t)
	defer closeFn()

	mock.ExpectExec(`UPDATE users SET deleted_at`).
		WithArgs("u1", model.UserStatusWithdrawn).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDelete(context.Background(), "u1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
