package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, name, email, role, password_hash, department, student_id, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*domain.Account, error) {
	query := `
		SELECT id, name, email, role, password_hash, department, student_id, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO users (name, email, role, password_hash, department, student_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		account.Name,
		account.Email,
		string(account.Role),
		account.PasswordHash,
		nullString(account.Department),
		nullString(account.StudentID),
		account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		// The unique index on lower(email) closes the race between the
		// duplicate check and the insert.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, department = $4, student_id = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		nullString(account.Department),
		nullString(account.StudentID),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *UserRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var role string
	var department, studentID sql.NullString
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&role,
		&account.PasswordHash,
		&department,
		&studentID,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	account.Role = domain.Role(role)
	account.Department = department.String
	account.StudentID = studentID.String
	return account, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
