package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	mysqlinfra "storefront/internal/infrastructure/mysql"
)

const userColumns = `id, name, email, passwordHash, answerHash, address, phone, role, createdAt, updatedAt`

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) Insert(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO Users (id, name, email, passwordHash, answerHash, address, phone, role, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.AnswerHash,
		user.Address, user.Phone, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if mysqlinfra.IsDuplicateKey(err) {
		return apperrors.NewCodedValidationError(apperrors.CodeDuplicateContact, "email is already registered")
	}
	if err != nil {
		return apperrors.NewInternalError("inserting user", err)
	}
	return nil
}

func (r *MySQLUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM Users WHERE email = ?`
	return r.findOne(ctx, query, email, fmt.Sprintf("user with email %s not found", email))
}

func (r *MySQLUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM Users WHERE id = ?`
	return r.findOne(ctx, query, id, fmt.Sprintf("user with id %s not found", id))
}

func (r *MySQLUserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := mysqlinfra.InArgs(ids)
	query := fmt.Sprintf(`SELECT %s FROM Users WHERE id IN (%s)`, userColumns, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("querying users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("scanning user row", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("iterating user rows", err)
	}

	return users, nil
}

// Update writes the mutable profile fields. Email and role are never
// touched here.
func (r *MySQLUserRepository) Update(ctx context.Context, user domain.User) error {
	query := `
		UPDATE Users
		SET name = ?, passwordHash = ?, answerHash = ?, address = ?, phone = ?, updatedAt = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.PasswordHash, user.AnswerHash, user.Address, user.Phone, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return apperrors.NewInternalError("updating user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}
	return nil
}

func (r *MySQLUserRepository) findOne(ctx context.Context, query string, arg any, notFound string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("querying user", err)
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := s.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AnswerHash,
		&user.Address, &user.Phone, &role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
