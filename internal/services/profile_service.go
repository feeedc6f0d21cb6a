package services

import (
	"context"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ProfileService edits descriptive user fields. Balance and role are not
// reachable from here.
type ProfileService struct {
	Store repositories.Store
	Now   clock
}

func (s ProfileService) Get(ctx context.Context, userID string) (models.PublicUser, error) {
	if err := requireID("userId", userID); err != nil {
		return models.PublicUser{}, err
	}
	var user models.User
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().Get(ctx, userID)
		return err
	})
	if err != nil {
		return models.PublicUser{}, internalErr(ctx, "get profile", logrus.Fields{"user_id": userID}, err)
	}
	return user.ToPublic(), nil
}

func (s ProfileService) Update(ctx context.Context, userID string, in models.ProfileUpdate) (models.PublicUser, error) {
	if err := requireID("userId", userID); err != nil {
		return models.PublicUser{}, err
	}
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validateStruct(in); err != nil {
		return models.PublicUser{}, err
	}

	var hash string
	if in.Password != nil {
		b, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.PublicUser{}, internalErr(ctx, "hash password", nil, err)
		}
		hash = string(b)
	}

	var user models.User
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := utils.NormalizeSpace(*in.Name)
			if name == "" {
				return domain.ValidationError{Field: "name", Msg: "is required"}
			}
			user.Name = name
		}
		if in.Email != nil && *in.Email != user.Email {
			if *in.Email == "" {
				return domain.ValidationError{Field: "email", Msg: "is required"}
			}
			if other, err := tx.Users().GetByEmail(ctx, *in.Email); err == nil && other.ID != user.ID {
				return domain.ConflictError{Resource: "user", Msg: "email already registered"}
			} else if err != nil && !domain.IsNotFound(err) {
				return err
			}
			user.Email = *in.Email
		}
		if in.Phone != nil {
			user.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.AvatarURL != nil {
			user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		user.UpdatedAt = s.Now.now()
		return tx.Users().UpdateProfile(ctx, user)
	})
	if err != nil {
		return models.PublicUser{}, internalErr(ctx, "update profile", logrus.Fields{"user_id": userID}, err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "profile", "update", "user_id="+userID)
	return user.ToPublic(), nil
}
