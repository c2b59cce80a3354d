package sqlite

import (
	"context"
	"database/sql"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, name, avatar, auth_provider,
	apple_id, google_id, role, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                        domain.User
		email, appleID, googleID sql.NullString
	)
	err := row.Scan(
		&u.ID, &email, &u.PasswordHash, &u.Name, &u.Avatar, &u.AuthProvider,
		&appleID, &googleID, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Email = mapNullString(email)
	u.AppleID = mapNullString(appleID)
	u.GoogleID = mapNullString(googleID)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetUserByAppleID(ctx context.Context, appleID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE apple_id = ?`, appleID))
}

func (r *usersRepo) GetUserByGoogleID(ctx context.Context, googleID string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, avatar, auth_provider,
			apple_id, google_id, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, mapStringNull(u.Email), u.PasswordHash, u.Name, u.Avatar, u.AuthProvider,
		mapStringNull(u.AppleID), mapStringNull(u.GoogleID), u.Role, u.IsActive,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, avatar = ?, auth_provider = ?, apple_id = ?, google_id = ?,
			password_hash = ?, role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		u.Name, u.Avatar, u.AuthProvider, mapStringNull(u.AppleID),
		mapStringNull(u.GoogleID), u.PasswordHash, u.Role, u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowChanged(res)
}

func (r *usersRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, userID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

// requireRowChanged maps a zero-row write to store.ErrNotFound.
func requireRowChanged(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
