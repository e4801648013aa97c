package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/utils"
)

// UserRepo persists donor and admin accounts.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

var ErrEmailExists = errors.New("email already exists")

// NewUserInput collects the fields needed to register an account. The donor
// profile fields are optional for admin accounts.
type NewUserInput struct {
	Email     string
	Password  string
	Role      string
	Name      string
	Phone     string
	BloodType string
}

// Create inserts a user and returns its ID. The password is bcrypt-hashed
// with the given cost before it touches the database.
func (r *UserRepo) Create(ctx context.Context, in NewUserInput, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := exec(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, phone, blood_type) VALUES (?,?,?,?,?,?)",
		email, hash, in.Role, in.Name, in.Phone, in.BloodType)
	if err != nil {
		// 1062 = MySQL duplicate entry, the unique index on email
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userCols = "id, email, password_hash, role, name, phone, blood_type, is_active, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Phone,
		&u.BloodType, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(exec(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(exec(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// CountByRole returns the number of active accounts with the given role.
// Used by the admin dashboard.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := exec(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=? AND is_active=1", role).Scan(&n)
	return n, err
}
