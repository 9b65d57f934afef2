package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/api/metrics"
	"github.com/pegasusdeploy/platform-api/internal/api/middleware"
	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// landingPage is where authenticated callers are sent.
const landingPage = "/"

// AccountHandler serves the interactive account flows (HTML forms, session
// cookie) and the programmatic token endpoint (JSON).
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterForm handles GET /account/register.
func (h *AccountHandler) RegisterForm(c echo.Context) error {
	if currentUsername(c) != "" {
		return c.Redirect(http.StatusSeeOther, landingPage)
	}
	return renderForm(c, http.StatusOK, registerPage, formData{})
}

// Register handles POST /account/register. Any successful creation redirects
// to the login entry point, whatever happened to the bootstrap role grant.
func (h *AccountHandler) Register(c echo.Context) error {
	if currentUsername(c) != "" {
		return c.Redirect(http.StatusSeeOther, landingPage)
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return renderForm(c, http.StatusBadRequest, registerPage, formData{
			Errors: []string{"invalid form submission"},
		})
	}
	data := formData{Username: req.Username, Email: req.Email}
	if err := c.Validate(&req); err != nil {
		data.Errors = []string{err.Error()}
		return renderForm(c, http.StatusUnprocessableEntity, registerPage, data)
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var ce *domain.CredentialError
		switch {
		case errors.As(err, &ce):
			data.Errors = ce.Descriptions
			return renderForm(c, http.StatusUnprocessableEntity, registerPage, data)
		case errors.Is(err, domain.ErrAccountExists):
			data.Errors = []string{"an account with that username already exists"}
			return renderForm(c, http.StatusConflict, registerPage, data)
		default:
			return err
		}
	}

	// The creation stands even when the bootstrap role grant failed; the
	// grant messages ride a one-shot cookie to the login page.
	if len(res.RoleGrantErrors) > 0 {
		setFlash(c, res.RoleGrantErrors)
	}

	metrics.AccountsRegisteredTotal.Inc()
	return c.Redirect(http.StatusSeeOther, "/account/login")
}

// LoginForm handles GET /account/login.
func (h *AccountHandler) LoginForm(c echo.Context) error {
	if currentUsername(c) != "" {
		return c.Redirect(http.StatusSeeOther, landingPage)
	}
	return renderForm(c, http.StatusOK, loginPage, formData{
		ReturnURL: c.QueryParam("ReturnUrl"),
		Notices:   takeFlash(c),
	})
}

// Login handles POST /account/login.
func (h *AccountHandler) Login(c echo.Context) error {
	if currentUsername(c) != "" {
		return c.Redirect(http.StatusSeeOther, landingPage)
	}

	data := formData{ReturnURL: c.QueryParam("ReturnUrl")}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		data.Errors = []string{"invalid login attempt"}
		return renderForm(c, http.StatusBadRequest, loginPage, data)
	}
	data.Username = req.Username
	if err := c.Validate(&req); err != nil {
		data.Errors = []string{"invalid login attempt"}
		return renderForm(c, http.StatusUnprocessableEntity, loginPage, data)
	}

	out, err := h.service.SignIn(c.Request().Context(), ports.SignInInput{
		Username:   req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		return err
	}

	if !out.Result.Succeeded {
		metrics.LoginAttemptsTotal.WithLabelValues("ui", "failure").Inc()
		data.Errors = failureMessages(out.Result)
		return renderForm(c, http.StatusUnauthorized, loginPage, data)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ui", "success").Inc()
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    out.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, safeReturnURL(data.ReturnURL))
}

// Logout handles GET /account/logout: ends the session unconditionally and
// redirects to the landing page. No precondition, no error path.
func (h *AccountHandler) Logout(c echo.Context) error {
	_ = h.service.SignOut(c.Request().Context(), currentSessionID(c))
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, landingPage)
}

// CreateToken handles POST /api/token — issues a bearer token.
//
// @Summary      Issue a bearer token
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Credentials"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/token [post]
func (h *AccountHandler) CreateToken(c echo.Context) error {
	var req tokenRequest
	// Bad shape gets the same generic rejection as bad credentials: the
	// response must carry no account-existence signal.
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid username or password")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid username or password")
	}

	res, err := h.service.IssueToken(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("api", "failure").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("api", "success").Inc()
	metrics.TokensIssuedTotal.Inc()
	return c.JSON(http.StatusCreated, tokenResponse{
		Token:      res.Token,
		Expiration: res.ExpiresAt,
	})
}

// failureMessages maps failure flags to user-facing lines: one per
// applicable reason. A two-factor requirement is logged upstream but never
// shown on this path; a flagless failure gets the generic line.
func failureMessages(r domain.SignInResult) []string {
	var msgs []string
	if r.NotAllowed {
		msgs = append(msgs, "your account is not allowed to sign in, contact the administrator")
	}
	if r.LockedOut {
		msgs = append(msgs, "your account is locked out, contact the administrator")
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "invalid login attempt")
	}
	return msgs
}

// safeReturnURL honors a ReturnUrl only when it is a local path, so the
// login endpoint cannot be used as an open redirect.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return landingPage
	}
	return raw
}
