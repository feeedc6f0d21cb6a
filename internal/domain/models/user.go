package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Email         string          `db:"email" json:"email"`
	PasswordHash  string          `db:"password_hash" json:"-"`
	Phone         string          `db:"phone" json:"phone"`
	Role          string          `db:"role" json:"role"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"walletBalance"`
	AvatarURL     string          `db:"avatar_url" json:"avatarUrl"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// PublicUser is the user payload safe to return to clients.
type PublicUser struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Role          string          `json:"role"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	AvatarURL     string          `json:"avatarUrl"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
	}
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
}
