package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// UserRepo mirrors the 'users' table. Logins are stored lower-cased.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeLogin trims and lower-cases a login.
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

const selectUser = `SELECT id, login, password_hash, role, COALESCE(first_name, ''), COALESCE(middle_name, ''),
	COALESCE(last_name, ''), is_active, created_at, updated_at FROM users`

func scanUser(sc interface{ Scan(...any) error }) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := sc.Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &u.FirstName, &u.MiddleName, &u.LastName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Role = model.Role(role)
	return u, err
}

// CreateTx inserts a user with an already hashed password inside tx.
// A taken login yields ErrLoginExists.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	u.Login = NormalizeLogin(u.Login)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, role, first_name, middle_name, last_name) VALUES (?,?,?,?,?,?)`,
		u.Login, u.PasswordHash, string(u.Role), u.FirstName, u.MiddleName, u.LastName)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrLoginExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByLogin fetches a user by normalized login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, selectUser+` WHERE login = ? LIMIT 1`, NormalizeLogin(login)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, selectUser+` WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListStaff returns every account that is not a client.
func (r *UserRepo) ListStaff(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, selectUser+` WHERE role <> 'client' ORDER BY login`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetRole assigns a job to a staff account. Fired accounts are also
// deactivated. Client accounts cannot be reassigned.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET role = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND role <> 'client'`,
		string(role), role != model.RoleFired, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
