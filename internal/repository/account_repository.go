package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lab-booking/internal/model"
)

const accountColumns = "id, display_name, phone, password_hash, role, location, created_at"

// AccountRepo is the credential store.  Every role lives in the single
// accounts table so the unique phone index spans all of them.
type AccountRepo struct{ DB *sqlx.DB }

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{DB: db} }

// NormalizePhone strips spaces, dashes and parentheses so "+91 98 765-4321"
// and "+919876543210" refer to the same account.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Create inserts a new account.  ID and CreatedAt are assigned here and
// written back to a.  A phone number that is already registered yields
// ErrPhoneExists and nothing is written.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.ID = uuid.NewString()
	a.Phone = NormalizePhone(a.Phone)
	a.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (id, display_name, phone, password_hash, role, location, created_at) VALUES (?,?,?,?,?,?,?)",
		a.ID, a.DisplayName, a.Phone, a.PasswordHash, a.Role, a.Location, a.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrPhoneExists
		}
		return err
	}
	return nil
}

// GetByPhone fetches an account by normalized phone.  ErrNotFound is
// returned when none matches.
func (r *AccountRepo) GetByPhone(ctx context.Context, phone string) (model.Account, error) {
	var a model.Account
	err := r.DB.GetContext(ctx, &a,
		"SELECT "+accountColumns+" FROM accounts WHERE phone=? LIMIT 1", NormalizePhone(phone))
	return a, notFound(err)
}

// GetByIDAndRole fetches an account for profile resolution.  The role is
// part of the key so a token minted for one role never resolves to an
// account that has since changed role.
func (r *AccountRepo) GetByIDAndRole(ctx context.Context, id string, role model.Role) (model.Account, error) {
	var a model.Account
	err := r.DB.GetContext(ctx, &a,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? AND role=? LIMIT 1", id, role)
	return a, notFound(err)
}

// ListByRole returns all accounts of the given role, newest first.
func (r *AccountRepo) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	out := []model.Account{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT "+accountColumns+" FROM accounts WHERE role=? ORDER BY created_at DESC, id", role)
	return out, err
}

// ListLocations returns the distinct branch locations that have at least
// one sub-admin, sorted alphabetically.
func (r *AccountRepo) ListLocations(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT DISTINCT location FROM accounts WHERE role=? AND location IS NOT NULL ORDER BY location",
		model.RoleSubAdmin)
	return out, err
}
