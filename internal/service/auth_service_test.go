package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/repository"
	"github.com/iliyamo/lab-booking/internal/testutil"
	"github.com/iliyamo/lab-booking/internal/utils"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewAccountRepo(testutil.NewDB(t)), testSecret, 0, bcrypt.MinCost)
}

var admin = model.Identity{ID: "admin-1", Role: model.RoleAdmin}

func TestIssueSessionMatchesStoredAccount(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)

	user, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000001", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	sub, err := s.CreateSubAdmin(ctx, admin, SubAdminInput{DisplayName: "Ravi", Phone: "9000000002", Password: "secret2", Location: "Hyderabad"})
	if err != nil {
		t.Fatalf("CreateSubAdmin: %v", err)
	}

	cases := []struct {
		phone, password string
		want            model.Identity
	}{
		{"9000000001", "secret1", model.Identity{ID: user.ID, Role: model.RoleUser}},
		{"9000000002", "secret2", model.Identity{ID: sub.ID, Role: model.RoleSubAdmin, Location: "Hyderabad"}},
	}
	for _, tc := range cases {
		tok, id, err := s.IssueSession(ctx, tc.phone, tc.password)
		if err != nil {
			t.Fatalf("IssueSession(%s): %v", tc.phone, err)
		}
		if id != tc.want {
			t.Errorf("identity = %+v, want %+v", id, tc.want)
		}
		_, parsed, err := utils.ParseSessionToken(testSecret, tok.Token)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if parsed != tc.want {
			t.Errorf("token identity = %+v, want %+v", parsed, tc.want)
		}
		if d := time.Until(tok.Exp); d <= DefaultSessionTTL-time.Minute || d > DefaultSessionTTL {
			t.Errorf("token expires in %s, want about %s", d, DefaultSessionTTL)
		}
	}
}

func TestIssueSessionRejectsMutatedPasswords(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	const password = "correct-horse"
	if _, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000003", Password: password}); err != nil {
		t.Fatal(err)
	}

	var mutations []string
	for i := range password {
		b := []byte(password)
		b[i] ^= 0x01
		mutations = append(mutations, string(b))
		mutations = append(mutations, password[:i]+password[i+1:])
	}
	mutations = append(mutations, password+"x", "", "CORRECT-HORSE")

	for _, m := range mutations {
		if _, _, err := s.IssueSession(ctx, "9000000003", m); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("password %q: expected ErrInvalidCredentials, got %v", m, err)
		}
	}
}

func TestIssueSessionUnknownPhoneIsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	if _, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000004", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	_, _, wrongPass := s.IssueSession(ctx, "9000000004", "nope-nope")
	_, _, unknown := s.IssueSession(ctx, "9999999999", "secret1")
	if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials twice, got %v and %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestSignupDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	in := SignupInput{DisplayName: "Asha", Phone: "9000000005", Password: "secret1"}
	if _, err := s.Signup(ctx, in); err != nil {
		t.Fatal(err)
	}
	in.Phone = "900-000-0005"
	if _, err := s.Signup(ctx, in); !errors.Is(err, ErrPhoneExists) {
		t.Fatalf("expected ErrPhoneExists, got %v", err)
	}
	_, err := s.CreateSubAdmin(ctx, admin, SubAdminInput{DisplayName: "R", Phone: "9000000005", Password: "secret2", Location: "Delhi"})
	if !errors.Is(err, ErrPhoneExists) {
		t.Fatalf("sub-admin with taken phone: expected ErrPhoneExists, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newAuth(t)
	_, err := s.Signup(context.Background(), SignupInput{Phone: "12", Password: "x"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{"display_name", "phone", "password"} {
		if _, ok := ve.Fields[f]; !ok {
			t.Errorf("missing field %q in %v", f, ve.Fields)
		}
	}
}

func TestPasswordLengthBounds(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	long := strings.Repeat("p", 80)

	_, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000008", Password: long})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["password"] == "" {
		t.Fatalf("80-byte signup password: expected password validation error, got %v", err)
	}
	_, err = s.CreateSubAdmin(ctx, admin, SubAdminInput{DisplayName: "R", Phone: "9000000009", Password: long, Location: "Delhi"})
	if !errors.As(err, &ve) || ve.Fields["password"] == "" {
		t.Fatalf("80-byte sub-admin password: expected password validation error, got %v", err)
	}

	exact := strings.Repeat("p", 72)
	if _, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000010", Password: exact}); err != nil {
		t.Fatalf("72-byte password: %v", err)
	}
	if _, _, err := s.IssueSession(ctx, "9000000010", exact); err != nil {
		t.Fatalf("login with 72-byte password: %v", err)
	}
}

func TestCreateSubAdminRequiresAdminAndLocation(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	in := SubAdminInput{DisplayName: "Ravi", Phone: "9000000006", Password: "secret2", Location: "Delhi"}

	for _, caller := range []model.Identity{
		{ID: "u", Role: model.RoleUser},
		{ID: "s", Role: model.RoleSubAdmin, Location: "Delhi"},
	} {
		if _, err := s.CreateSubAdmin(ctx, caller, in); !errors.Is(err, ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden, got %v", caller.Role, err)
		}
	}

	in.Location = "  "
	var ve *ValidationError
	if _, err := s.CreateSubAdmin(ctx, admin, in); !errors.As(err, &ve) || ve.Fields["location"] == "" {
		t.Fatalf("expected location validation error, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	created, err := s.EnsureAdmin(ctx, "Admin", "9000000007", "admin-pass")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin: created=%v err=%v", created, err)
	}
	created, err = s.EnsureAdmin(ctx, "Admin", "9000000007", "admin-pass")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin: created=%v err=%v", created, err)
	}
	_, id, err := s.IssueSession(ctx, "9000000007", "admin-pass")
	if err != nil || id.Role != model.RoleAdmin || id.Location != "" {
		t.Fatalf("admin login: %+v %v", id, err)
	}
}

func TestProfileAndSubAdminListing(t *testing.T) {
	ctx := context.Background()
	s := newAuth(t)
	for i, loc := range []string{"Hyderabad", "Delhi", "Hyderabad"} {
		_, err := s.CreateSubAdmin(ctx, admin, SubAdminInput{
			DisplayName: "S", Phone: "900000010" + string(rune('0'+i)), Password: "secret2", Location: loc,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	subs, err := s.ListSubAdmins(ctx, admin)
	if err != nil || len(subs) != 3 {
		t.Fatalf("ListSubAdmins: %d %v", len(subs), err)
	}
	locs, err := s.Locations(ctx)
	if err != nil || len(locs) != 2 {
		t.Fatalf("Locations: %v %v", locs, err)
	}

	user, err := s.Signup(ctx, SignupInput{DisplayName: "Asha", Phone: "9000000200", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	uid, _ := user.Identity()
	p, err := s.Profile(ctx, uid)
	if err != nil || p.DisplayName != "Asha" {
		t.Fatalf("Profile: %+v %v", p, err)
	}
	// Identity with the right id but the wrong role resolves to nothing.
	if _, err := s.Profile(ctx, model.Identity{ID: user.ID, Role: model.RoleAdmin}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
