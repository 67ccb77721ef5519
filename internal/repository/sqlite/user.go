package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		// The driver reports unique violations as
		// "UNIQUE constraint failed: users.<column>".
		msg := err.Error()
		switch {
		case strings.Contains(msg, "users.username"):
			return 0, repository.ErrDuplicateUsername
		case strings.Contains(msg, "users.email"):
			return 0, repository.ErrDuplicateEmail
		}

		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
