package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/lab-booking/internal/access"
	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/repository"
	"github.com/iliyamo/lab-booking/internal/utils"
)

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AccountStore is the credential store used by AuthService.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByPhone(ctx context.Context, phone string) (model.Account, error)
	GetByIDAndRole(ctx context.Context, id string, role model.Role) (model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	ListLocations(ctx context.Context) ([]string, error)
}

// AuthService creates accounts and issues sessions.
type AuthService struct {
	Accounts   AccountStore
	Secret     string
	TTL        time.Duration
	BcryptCost int
}

func NewAuthService(accounts AccountStore, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{Accounts: accounts, Secret: secret, TTL: ttl, BcryptCost: bcryptCost}
}

// SignupInput is the payload of a customer signup.
type SignupInput struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

// SubAdminInput is the payload an admin sends to create a branch operator.
type SubAdminInput struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Location    string `json:"location"`
}

// bcrypt ignores nothing past 72 bytes; x/crypto rejects longer input.
const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

func validateAccount(v validator, name, phone, password string) {
	v.check(name != "", "display_name", "required")
	v.check(len(name) <= 120, "display_name", "too long")
	digits := strings.TrimPrefix(phone, "+")
	v.check(phone != "", "phone", "required")
	v.check(len(digits) >= 7 && len(digits) <= 15, "phone", "must have 7 to 15 digits")
	v.check(len(password) >= minPasswordLen, "password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	v.check(len(password) <= maxPasswordLen, "password", fmt.Sprintf("must be at most %d bytes", maxPasswordLen))
}

// Signup registers a customer account.  A phone that already belongs to
// any account, whatever its role, fails with ErrPhoneExists.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.Account, error) {
	name := strings.TrimSpace(in.DisplayName)
	phone := repository.NormalizePhone(in.Phone)
	v := validator{}
	validateAccount(v, name, phone, in.Password)
	if err := v.err(); err != nil {
		return model.Account{}, err
	}
	return s.create(ctx, name, phone, in.Password, model.RoleUser, "")
}

// CreateSubAdmin registers a sub-admin bound to a branch location.  Only
// admins may call it.
func (s *AuthService) CreateSubAdmin(ctx context.Context, caller model.Identity, in SubAdminInput) (model.Account, error) {
	if err := access.Authorize(caller, access.Admins); err != nil {
		return model.Account{}, err
	}
	name := strings.TrimSpace(in.DisplayName)
	phone := repository.NormalizePhone(in.Phone)
	location := strings.TrimSpace(in.Location)
	v := validator{}
	validateAccount(v, name, phone, in.Password)
	v.check(location != "", "location", "required")
	if err := v.err(); err != nil {
		return model.Account{}, err
	}
	return s.create(ctx, name, phone, in.Password, model.RoleSubAdmin, location)
}

// EnsureAdmin creates the admin account unless the phone is already
// registered.  It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, phone, password string) (bool, error) {
	_, err := s.create(ctx, strings.TrimSpace(name), repository.NormalizePhone(phone), password, model.RoleAdmin, "")
	if errors.Is(err, ErrPhoneExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) create(ctx context.Context, name, phone, password string, role model.Role, location string) (model.Account, error) {
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}
	a := model.Account{DisplayName: name, Phone: phone, PasswordHash: hash, Role: role}
	if role.ScopedByLocation() {
		a.Location = &location
	}
	if _, err := a.Identity(); err != nil {
		return model.Account{}, err
	}
	if err := s.Accounts.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrPhoneExists) {
			return model.Account{}, ErrPhoneExists
		}
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// IssueSession verifies phone and password and mints a signed session
// token for the account's identity.  An unknown phone and a wrong password
// both return ErrInvalidCredentials after a bcrypt comparison, so neither
// the error nor the timing reveals which one happened.
func (s *AuthService) IssueSession(ctx context.Context, phone, password string) (utils.SessionToken, model.Identity, error) {
	a, err := s.Accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password, s.BcryptCost)
			return utils.SessionToken{}, model.Identity{}, ErrInvalidCredentials
		}
		return utils.SessionToken{}, model.Identity{}, fmt.Errorf("load account: %w", err)
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return utils.SessionToken{}, model.Identity{}, ErrInvalidCredentials
	}
	id, err := a.Identity()
	if err != nil {
		return utils.SessionToken{}, model.Identity{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	tok, err := s.Mint(id)
	if err != nil {
		return utils.SessionToken{}, model.Identity{}, err
	}
	return tok, id, nil
}

// Mint signs a session token for an identity that has already been
// authenticated, such as a freshly created account.
func (s *AuthService) Mint(id model.Identity) (utils.SessionToken, error) {
	tok, err := utils.NewSessionToken(s.Secret, id, s.TTL)
	if err != nil {
		return utils.SessionToken{}, fmt.Errorf("sign session: %w", err)
	}
	return tok, nil
}

// Profile resolves the stored account behind an identity.
func (s *AuthService) Profile(ctx context.Context, id model.Identity) (model.Profile, error) {
	a, err := s.Accounts.GetByIDAndRole(ctx, id.ID, id.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return a.Profile(), nil
}

// ListSubAdmins returns every sub-admin profile.  Admin only.
func (s *AuthService) ListSubAdmins(ctx context.Context, caller model.Identity) ([]model.Profile, error) {
	if err := access.Authorize(caller, access.Admins); err != nil {
		return nil, err
	}
	accounts, err := s.Accounts.ListByRole(ctx, model.RoleSubAdmin)
	if err != nil {
		return nil, fmt.Errorf("list sub-admins: %w", err)
	}
	out := make([]model.Profile, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Profile())
	}
	return out, nil
}

// Locations returns the branch locations served by at least one sub-admin.
func (s *AuthService) Locations(ctx context.Context) ([]string, error) {
	locs, err := s.Accounts.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}
