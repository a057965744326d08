package repository

import (
	"context"
	"database/sql"
	"errors"

	"auth-session-server/config"
	"auth-session-server/internal/apperror"
	"auth-session-server/internal/model"
	"auth-session-server/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

const uniqueViolation = "23505"

// CreateUser : сохраняет нового пользователя.
// Нарушение уникальности email со стороны БД закрывает гонку с
// предварительной проверкой EmailExists и отдается той же ошибкой.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash, name, phone_number, status, marketing_agreed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING uuid, email, password_hash, name, phone_number, profile_image_url, status,
	          marketing_agreed, last_login_at, created_at, updated_at, deleted_at
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.PhoneNumber,
		user.Status,
		user.MarketingAgreed,
	).StructScan(createdUser)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.ErrEmailAlreadyExists
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет живого пользователя по UUID. Возвращает nil без ошибки,
// если пользователь не найден или удалён.
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT * FROM users WHERE uuid = $1 AND deleted_at IS NULL`
	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByEmail : ищет живого пользователя по email. Возвращает nil без
// ошибки, если пользователь не найден — вызывающая сторона обязана
// выполнить проверку пароля против фиктивного хэша.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`
	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`
	err := sqlx.GetContext(ctx, r.DB, &exists, query, email)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования email", err)
	}
	return exists, nil
}

// UpdateProfile : обновляет имя и телефон
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $2, phone_number = $3, updated_at = now()
		WHERE uuid = $1
	`
	_, err := r.DB.ExecContext(ctx, query, user.UUID, user.Name, user.PhoneNumber)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить профиль", err)
	}
	return nil
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE uuid = $1`
	_, err := r.DB.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, uuid, url string) error {
	query := `UPDATE users SET profile_image_url = $2, updated_at = now() WHERE uuid = $1`
	_, err := r.DB.ExecContext(ctx, query, uuid, url)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить ссылку на аватар", err)
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, uuid string) error {
	query := `UPDATE users SET last_login_at = now() WHERE uuid = $1`
	_, err := r.DB.ExecContext(ctx, query, uuid)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить время входа", err)
	}
	return nil
}

// SoftDelete : логическое удаление аккаунта. Запись остаётся в БД,
// статус переводится в WITHDRAWN.
func (r *UserRepository) SoftDelete(ctx context.Context, uuid string) error {
	query := `UPDATE users SET deleted_at = now(), status = $2, updated_at = now() WHERE uuid = $1`
	_, err := r.DB.ExecContext(ctx, query, uuid, model.UserStatusWithdrawn)
	if err != nil {
		return util.LogError("[UserRepo] не удалось удалить пользователя", err)
	}
	return nil
}
