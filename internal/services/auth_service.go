package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService registers users and issues and verifies HS256 tokens.
type AuthService struct {
	Store    repositories.Store
	Secret   []byte
	TokenTTL time.Duration
	Now      clock
	NewID    idSource
}

func (s AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	req.Name = utils.NormalizeSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateStruct(req); err != nil {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, internalErr(ctx, "hash password", nil, err)
	}
	now := s.Now.now()
	user := models.User{
		ID:            s.NewID.next(),
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Phone:         req.Phone,
		Role:          domain.RoleUser,
		WalletBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		if _, err := tx.Users().GetByEmail(ctx, user.Email); err == nil {
			return domain.ConflictError{Resource: "user", Msg: "email already registered"}
		} else if !domain.IsNotFound(err) {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return AuthResult{}, internalErr(ctx, "register", logrus.Fields{"email": user.Email}, err)
	}

	token, err := s.issue(user)
	if err != nil {
		return AuthResult{}, internalErr(ctx, "issue token", logrus.Fields{"user_id": user.ID}, err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "register", "user_id="+user.ID)
	return AuthResult{Token: token, User: user.ToPublic()}, nil
}

func (s AuthService) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return AuthResult{}, err
	}
	var user models.User
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, req.Email)
		return err
	})
	if domain.IsNotFound(err) {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid email or password"}
	}
	if err != nil {
		return AuthResult{}, internalErr(ctx, "login", logrus.Fields{"email": req.Email}, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid email or password"}
	}

	token, err := s.issue(user)
	if err != nil {
		return AuthResult{}, internalErr(ctx, "issue token", logrus.Fields{"user_id": user.ID}, err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "login", "user_id="+user.ID)
	return AuthResult{Token: token, User: user.ToPublic()}, nil
}

func (s AuthService) issue(u models.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := s.Now.now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies signature and expiry and returns the token's identity.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.Now.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.RequestContext{}, domain.UnauthorizedError{Msg: "token expired"}
		}
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	if claims.UserID == "" {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return domain.RequestContext{UserID: claims.UserID, Role: claims.Role}, nil
}
