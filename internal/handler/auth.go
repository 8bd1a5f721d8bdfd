package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/middleware"
	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/service"
	"github.com/iliyamo/lab-booking/internal/session"
	"github.com/iliyamo/lab-booking/internal/utils"
)

// AuthHandler bundles dependencies for account and session endpoints.
type AuthHandler struct {
	Auth    *service.AuthService
	Cookies session.CookieWriter
	// Revoked may be nil; logout then only clears cookies.
	Revoked session.Revocations
	// ExposeToken adds the raw token to login and signup responses, for
	// clients that authenticate with a Bearer header.
	ExposeToken bool
}

func NewAuthHandler(auth *service.AuthService, cookies session.CookieWriter, revoked session.Revocations, exposeToken bool) *AuthHandler {
	if auth == nil {
		panic("nil auth service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth, Cookies: cookies, Revoked: revoked, ExposeToken: exposeToken}
}

type loginReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type sessionResp struct {
	Identity  model.Identity `json:"identity"`
	ExpiresAt time.Time      `json:"expires_at"`
	Token     string         `json:"token,omitempty"`
}

// startSession stores the token in the cookie slot for the identity's
// role and writes the response body.
func (h *AuthHandler) startSession(c echo.Context, status int, id model.Identity, tok utils.SessionToken) error {
	h.Cookies.Set(c.Response(), id.Role, tok.Token, tok.Exp)
	resp := sessionResp{Identity: id, ExpiresAt: tok.Exp}
	if h.ExposeToken {
		resp.Token = tok.Token
	}
	return c.JSON(status, resp)
}

// Signup handles POST /v1/auth/signup.  It creates a customer account and
// signs the new customer in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	acct, err := h.Auth.Signup(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	id, err := acct.Identity()
	if err != nil {
		return respondError(c, err)
	}
	tok, err := h.Auth.Mint(id)
	if err != nil {
		return respondError(c, err)
	}
	return h.startSession(c, http.StatusCreated, id, tok)
}

// Login handles POST /v1/auth/login for every role.  The cookie slot is
// chosen from the role of the account that matched.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tok, id, err := h.Auth.IssueSession(ctx, req.Phone, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return h.startSession(c, http.StatusOK, id, tok)
}

// Logout handles POST /v1/auth/logout.  Every slot cookie is cleared and
// every token the request presented is revoked until it would have
// expired.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.Revoked != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		for _, res := range middleware.SessionsFrom(c) {
			if res.Claims == nil || res.Claims.ExpiresAt == nil {
				continue
			}
			if err := h.Revoked.Revoke(ctx, res.Claims.ID, res.Claims.ExpiresAt.Time); err != nil {
				c.Logger().Warnf("logout: revoke %s failed: %v", res.Claims.ID, err)
			}
		}
	}
	h.Cookies.ClearAll(c.Response())
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Auth.Profile(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"identity": id, "profile": profile})
}

// CreateSubAdmin handles POST /v1/admin/sub-admins.
func (h *AuthHandler) CreateSubAdmin(c echo.Context) error {
	var req service.SubAdminInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	acct, err := h.Auth.CreateSubAdmin(ctx, middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, acct.Profile())
}

// ListSubAdmins handles GET /v1/admin/sub-admins.
func (h *AuthHandler) ListSubAdmins(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	subs, err := h.Auth.ListSubAdmins(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sub_admins": subs})
}

// Locations handles GET /v1/locations: the branches a customer may pick.
func (h *AuthHandler) Locations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	locs, err := h.Auth.Locations(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": locs})
}
