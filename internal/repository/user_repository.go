package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/unclebandit/campaign-crm/internal/db"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	FindOrCreateByGoogleID(ctx context.Context, u *model.User) (*model.User, error)
}

type UserRepository struct {
	DB *db.Database
}

// GetByID returns nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	query, err := r.DB.Queries.Raw("get-user")
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.NewStorageError("get user", err)
	}
	return &u, nil
}

// FindOrCreateByGoogleID returns the stored user for u.GoogleID, refreshing
// its profile, or inserts u.
func (r *UserRepository) FindOrCreateByGoogleID(ctx context.Context, u *model.User) (*model.User, error) {
	find, err := r.DB.Queries.Raw("get-user-by-google-id")
	if err != nil {
		return nil, err
	}

	var existing model.User
	err = r.DB.GetContext(ctx, &existing, find, u.GoogleID)
	switch {
	case err == nil:
		if existing.Email != u.Email || existing.Name != u.Name || existing.Picture != u.Picture {
			update, err := r.DB.Queries.Raw("update-user-profile")
			if err != nil {
				return nil, err
			}
			if _, err := r.DB.ExecContext(ctx, update, u.Email, u.Name, u.Picture, existing.ID); err != nil {
				return nil, appErrors.NewStorageError("update user", err)
			}
			existing.Email, existing.Name, existing.Picture = u.Email, u.Name, u.Picture
		}
		return &existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.NewStorageError("find user", err)
	}

	insert, err := r.DB.Queries.Raw("insert-user")
	if err != nil {
		return nil, err
	}

	created := *u
	created.CreatedAt = time.Now().UTC()
	if err := r.DB.QueryRowxContext(ctx, insert, created.GoogleID, created.Email, created.Name, created.Picture, created.CreatedAt).Scan(&created.ID); err != nil {
		return nil, appErrors.NewStorageError("insert user", err)
	}
	return &created, nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
