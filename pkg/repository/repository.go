package repository

import (
	"context"
	"errors"

	"github.com/zmikicdroin/jobtracker/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// Sentinel errors mapped to HTTP statuses by the api package.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Application, error)
	// GetByID returns (nil, nil) when no row is owned by userID with that id.
	GetByID(ctx context.Context, userID, id int64) (*models.Application, error)
	// UpdateApplication overwrites all mutable fields of the row matching
	// a.ID and a.UserID. The cv_filename column is only touched when
	// replaceCV is set. Returns ErrNotFound when no owned row matched.
	UpdateApplication(ctx context.Context, a *models.Application, replaceCV bool) error
	// SetStatus mutates only the status column. Returns ErrNotFound when no
	// owned row matched. Callers must validate status beforehand.
	SetStatus(ctx context.Context, userID, id int64, status string) error
	// DeleteApplication removes the owned row and returns the cv_filename it
	// carried, if any, so the caller can clean up attachment storage.
	DeleteApplication(ctx context.Context, userID, id int64) (*string, error)
	// GetCVFilename returns the current attachment name of an owned row.
	GetCVFilename(ctx context.Context, userID, id int64) (*string, error)
	// OwnsCV reports whether userID owns an application whose cv_filename
	// equals filename.
	OwnsCV(ctx context.Context, userID int64, filename string) (bool, error)
	Stats(ctx context.Context, userID int64) (*models.Stats, error)
}
