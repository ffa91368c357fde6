package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

type AuthorizedUserRepository struct {
	pool PgxPool
}

func NewAuthorizedUserRepository(pool PgxPool) *AuthorizedUserRepository {
	return &AuthorizedUserRepository{pool: pool}
}

func (r *AuthorizedUserRepository) Create(ctx context.Context, user *domain.AuthorizedUser) error {
	query := `
		INSERT INTO authorized_users (user_id, description, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.UserID,
		user.Description,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create authorized user: %w", err)
	}

	return nil
}

func (r *AuthorizedUserRepository) GetByUserID(ctx context.Context, userID string) (*domain.AuthorizedUser, error) {
	query := `
		SELECT id, user_id, description, created_at
		FROM authorized_users
		WHERE user_id = $1
	`

	var user domain.AuthorizedUser
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.UserID,
		&user.Description,
		&user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get authorized user: %w", err)
	}

	return &user, nil
}

// IsAuthorized is the durable-store membership check behind the cache.
func (r *AuthorizedUserRepository) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM authorized_users WHERE user_id = $1)
	`

	var authorized bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&authorized); err != nil {
		return false, fmt.Errorf("check authorization: %w", err)
	}

	return authorized, nil
}

func (r *AuthorizedUserRepository) List(ctx context.Context, skip, limit int) ([]domain.AuthorizedUser, error) {
	query := `
		SELECT id, user_id, description, created_at
		FROM authorized_users
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, skip, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list authorized users: %w", err)
	}
	defer rows.Close()

	var users []domain.AuthorizedUser
	for rows.Next() {
		var user domain.AuthorizedUser
		if err := rows.Scan(&user.ID, &user.UserID, &user.Description, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan authorized user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authorized users: %w", err)
	}

	return users, nil
}

// ListUserIDs returns every authorized user id, used to warm the cache
// snapshot at consumer startup and after directory mutations.
func (r *AuthorizedUserRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id
		FROM authorized_users
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}

	return ids, nil
}

func (r *AuthorizedUserRepository) Delete(ctx context.Context, userID string) error {
	query := `
		DELETE FROM authorized_users
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete authorized user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
