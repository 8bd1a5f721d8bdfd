package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/lab-booking/internal/handler"
	"github.com/iliyamo/lab-booking/internal/repository"
	"github.com/iliyamo/lab-booking/internal/service"
	"github.com/iliyamo/lab-booking/internal/session"
	"github.com/iliyamo/lab-booking/internal/testutil"
)

const secret = "router-secret"

type app struct {
	t    *testing.T
	e    *echo.Echo
	auth *service.AuthService
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := testutil.NewDB(t)
	auth := service.NewAuthService(repository.NewAccountRepo(db), secret, 0, bcrypt.MinCost)
	bookings := service.NewBookingService(repository.NewBookingRepo(db), nil)

	slots := session.Slots{User: "user_token", SubAdmin: "subadmin_token", Admin: "admin_token"}
	sources := append(slots.Sources(), session.BearerSource{})
	revoked := session.NewMemoryRevocations()

	e := echo.New()
	New(e, Deps{
		DB:       db,
		Auth:     handler.NewAuthHandler(auth, session.CookieWriter{Slots: slots}, revoked, false),
		Bookings: handler.NewBookingHandler(bookings),
		Verifier: session.NewVerifier(secret, sources, revoked),
	})
	return &app{t: t, e: e, auth: auth}
}

type response struct {
	code    int
	body    map[string]any
	raw     string
	cookies []*http.Cookie
}

func (a *app) do(method, path string, body any, cookies ...*http.Cookie) response {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	res := response{code: rec.Code, raw: rec.Body.String(), cookies: rec.Result().Cookies()}
	_ = json.Unmarshal(rec.Body.Bytes(), &res.body)
	return res
}

// login returns the session cookie issued for the given credentials.
func (a *app) login(phone, password, wantCookie string) *http.Cookie {
	a.t.Helper()
	res := a.do(http.MethodPost, "/v1/auth/login", map[string]string{"phone": phone, "password": password})
	if res.code != http.StatusOK {
		a.t.Fatalf("login %s: %d %s", phone, res.code, res.raw)
	}
	if _, leaked := res.body["token"]; leaked {
		a.t.Fatalf("token exposed in body: %s", res.raw)
	}
	for _, c := range res.cookies {
		if c.Name == wantCookie && c.Value != "" {
			if !c.HttpOnly {
				a.t.Fatalf("cookie %s is not HttpOnly", c.Name)
			}
			return c
		}
	}
	a.t.Fatalf("login %s: no %s cookie in %v", phone, wantCookie, res.cookies)
	return nil
}

func (a *app) expect(res response, code int) {
	a.t.Helper()
	if res.code != code {
		a.t.Fatalf("status %d, want %d: %s", res.code, code, res.raw)
	}
}

func TestBookingWorkflow(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	a.expect(a.do(http.MethodGet, "/healthz", nil), http.StatusOK)

	if _, err := a.auth.EnsureAdmin(ctx, "Admin", "9000000000", "admin-pass"); err != nil {
		t.Fatal(err)
	}
	adminCookie := a.login("9000000000", "admin-pass", "admin_token")

	for _, sa := range []map[string]string{
		{"display_name": "Hyd desk", "phone": "9000000011", "password": "hyd-pass", "location": "Hyderabad"},
		{"display_name": "Delhi desk", "phone": "9000000012", "password": "del-pass", "location": "Delhi"},
	} {
		a.expect(a.do(http.MethodPost, "/v1/admin/sub-admins", sa, adminCookie), http.StatusCreated)
	}
	hyd := a.login("9000000011", "hyd-pass", "subadmin_token")
	del := a.login("9000000012", "del-pass", "subadmin_token")

	locs := a.do(http.MethodGet, "/v1/locations", nil)
	a.expect(locs, http.StatusOK)
	if got, _ := locs.body["locations"].([]any); len(got) != 2 {
		t.Fatalf("locations = %s", locs.raw)
	}

	signup := a.do(http.MethodPost, "/v1/auth/signup", map[string]string{"display_name": "Asha", "phone": "9000000021", "password": "asha-pass"})
	a.expect(signup, http.StatusCreated)
	var user *http.Cookie
	for _, c := range signup.cookies {
		if c.Name == "user_token" {
			user = c
		}
	}
	if user == nil {
		t.Fatalf("signup set no user cookie: %v", signup.cookies)
	}
	userID := signup.body["identity"].(map[string]any)["id"].(string)

	// Client-supplied status and owner are ignored.
	created := a.do(http.MethodPost, "/v1/bookings", map[string]any{
		"test_ref": "cbc", "selected_location": "Hyderabad",
		"payment_method": "offline", "payment_status": "unpaid",
		"status": "accepted", "user_id": "someone-else",
	}, user)
	a.expect(created, http.StatusCreated)
	if created.body["status"] != "pending" || created.body["user_id"] != userID {
		t.Fatalf("unexpected booking %s", created.raw)
	}
	bookingID := created.body["id"].(string)
	statusPath := "/v1/admin/bookings/" + bookingID + "/status"

	a.expect(a.do(http.MethodPatch, statusPath, map[string]string{"status": "accepted"}, del), http.StatusForbidden)
	accepted := a.do(http.MethodPatch, statusPath, map[string]string{"status": "accepted"}, hyd)
	a.expect(accepted, http.StatusOK)
	if accepted.body["status"] != "accepted" {
		t.Fatalf("status not updated: %s", accepted.raw)
	}
	a.expect(a.do(http.MethodPatch, statusPath, map[string]string{"status": "rejected"}, del), http.StatusForbidden)
	a.expect(a.do(http.MethodPatch, statusPath, map[string]string{"status": "rejected"}, adminCookie), http.StatusConflict)
	a.expect(a.do(http.MethodPatch, statusPath, map[string]string{"status": "pending"}, adminCookie), http.StatusConflict)

	for _, tc := range []struct {
		cookie *http.Cookie
		want   int
	}{{hyd, 1}, {del, 0}, {adminCookie, 1}} {
		res := a.do(http.MethodGet, "/v1/admin/bookings", nil, tc.cookie)
		a.expect(res, http.StatusOK)
		if got, _ := res.body["bookings"].([]any); len(got) != tc.want {
			t.Fatalf("%s sees %d bookings, want %d", tc.cookie.Name, len(got), tc.want)
		}
	}

	mine := a.do(http.MethodGet, "/v1/bookings/mine", nil, user)
	a.expect(mine, http.StatusOK)
	if got, _ := mine.body["bookings"].([]any); len(got) != 1 {
		t.Fatalf("mine = %s", mine.raw)
	}
	a.expect(a.do(http.MethodGet, "/v1/bookings/"+bookingID, nil, user), http.StatusOK)
	a.expect(a.do(http.MethodGet, "/v1/bookings/"+bookingID, nil, del), http.StatusForbidden)
	a.expect(a.do(http.MethodGet, "/v1/bookings/missing", nil, adminCookie), http.StatusNotFound)

	me := a.do(http.MethodGet, "/v1/me", nil, hyd)
	a.expect(me, http.StatusOK)
	if me.body["identity"].(map[string]any)["location"] != "Hyderabad" {
		t.Fatalf("me = %s", me.raw)
	}
}

func TestAccessErrors(t *testing.T) {
	a := newApp(t)
	a.expect(a.do(http.MethodPost, "/v1/auth/signup", map[string]string{"display_name": "Asha", "phone": "9000000031", "password": "asha-pass"}), http.StatusCreated)
	user := a.login("9000000031", "asha-pass", "user_token")

	a.expect(a.do(http.MethodGet, "/v1/admin/bookings", nil), http.StatusUnauthorized)
	a.expect(a.do(http.MethodGet, "/v1/admin/bookings", nil, user), http.StatusForbidden)
	a.expect(a.do(http.MethodPost, "/v1/admin/sub-admins", map[string]string{}, user), http.StatusForbidden)
	a.expect(a.do(http.MethodGet, "/v1/bookings/mine", nil, &http.Cookie{Name: "user_token", Value: "forged"}), http.StatusUnauthorized)

	dup := a.do(http.MethodPost, "/v1/auth/signup", map[string]string{"display_name": "B", "phone": "9000000031", "password": "other-pass"})
	a.expect(dup, http.StatusConflict)

	invalid := a.do(http.MethodPost, "/v1/bookings", map[string]string{"payment_method": "cash"}, user)
	a.expect(invalid, http.StatusBadRequest)
	fields, _ := invalid.body["fields"].(map[string]any)
	for _, f := range []string{"test_ref", "selected_location", "payment_method", "payment_status"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing field %q in %s", f, invalid.raw)
		}
	}

	wrong := a.do(http.MethodPost, "/v1/auth/login", map[string]string{"phone": "9000000031", "password": "nope"})
	unknown := a.do(http.MethodPost, "/v1/auth/login", map[string]string{"phone": "9111111111", "password": "asha-pass"})
	a.expect(wrong, http.StatusUnauthorized)
	a.expect(unknown, http.StatusUnauthorized)
	if wrong.raw != unknown.raw {
		t.Fatalf("login failures differ: %q vs %q", wrong.raw, unknown.raw)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	a := newApp(t)
	a.expect(a.do(http.MethodPost, "/v1/auth/signup", map[string]string{"display_name": "Asha", "phone": "9000000041", "password": "asha-pass"}), http.StatusCreated)
	user := a.login("9000000041", "asha-pass", "user_token")
	a.expect(a.do(http.MethodGet, "/v1/me", nil, user), http.StatusOK)

	out := a.do(http.MethodPost, "/v1/auth/logout", nil, user)
	a.expect(out, http.StatusNoContent)
	cleared := 0
	for _, c := range out.cookies {
		if c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 3 {
		t.Fatalf("expected 3 cleared slots, got %v", out.cookies)
	}
	a.expect(a.do(http.MethodGet, "/v1/me", nil, user), http.StatusUnauthorized)

	// Anonymous logout is harmless.
	a.expect(a.do(http.MethodPost, "/v1/auth/logout", nil), http.StatusNoContent)
}

func TestLogoutRevokesEverySlot(t *testing.T) {
	a := newApp(t)
	if _, err := a.auth.EnsureAdmin(context.Background(), "Admin", "9000000000", "admin-pass"); err != nil {
		t.Fatal(err)
	}
	a.expect(a.do(http.MethodPost, "/v1/auth/signup", map[string]string{"display_name": "Asha", "phone": "9000000042", "password": "asha-pass"}), http.StatusCreated)
	user := a.login("9000000042", "asha-pass", "user_token")
	admin := a.login("9000000000", "admin-pass", "admin_token")

	a.expect(a.do(http.MethodPost, "/v1/auth/logout", nil, user, admin), http.StatusNoContent)
	a.expect(a.do(http.MethodGet, "/v1/me", nil, user), http.StatusUnauthorized)
	a.expect(a.do(http.MethodGet, "/v1/me", nil, admin), http.StatusUnauthorized)
}
