package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

func (q queries) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(user).Error, "failed to create user",
		goerr.V("username", user.Username))
}

// FindUserByUsername returns nil, nil when no user has that name.
func (q queries) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := q.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to find user", goerr.V("username", username))
	}
	return &user, nil
}

func (q queries) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "user not found", goerr.V("user_id", id))
	}
	return &user, nil
}

func (q queries) UpdateProfile(ctx context.Context, user *model.User) error {
	err := q.db.WithContext(ctx).Model(user).
		Select("full_name", "phone").
		Updates(user).Error
	return translate(err, "failed to update profile", goerr.V("user_id", user.ID))
}
