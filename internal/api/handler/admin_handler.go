package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/api/metrics"
	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const (
	// SessionCookieName carries the signed admin session token.
	SessionCookieName = "admin_session"

	AdminLoginPath     = "/admin-login"
	AdminDashboardPath = "/admin-dashboard"

	displayTimeLayout = "2006-01-02 15:04"
)

// AdminHandler serves the server-rendered admin login and dashboard pages.
type AdminHandler struct {
	admins       ports.AdminService
	reports      ports.ReportService
	secureCookie bool
	log          zerolog.Logger
	now          func() time.Time
}

func NewAdminHandler(admins ports.AdminService, reports ports.ReportService, secureCookie bool, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admins:       admins,
		reports:      reports,
		secureCookie: secureCookie,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type loginPage struct {
	Error string
	Email string
}

type dashboardRow struct {
	VisitorName string
	Email       string
	Phone       string
	Purpose     string
	HostName    string
	CheckIn     string
	CheckOut    string
	Duration    string
	Status      string
}

type dashboardPage struct {
	AdminEmail    string
	CheckInsToday int64
	Active        []dashboardRow
	Recent        []dashboardRow
	GeneratedAt   string
}

// LoginPage handles GET /admin-login. A signed-in admin goes straight to the dashboard.
func (h *AdminHandler) LoginPage(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		if _, err := h.admins.Authenticate(c.Request().Context(), cookie.Value); err == nil {
			return c.Redirect(http.StatusFound, AdminDashboardPath)
		}
	}
	return c.Render(http.StatusOK, "login.html", loginPage{})
}

// Login handles POST /admin-login. Unknown email and wrong password get the same message.
func (h *AdminHandler) Login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	session, err := h.admins.Login(c.Request().Context(), email, password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.AdminLoginsTotal.WithLabelValues("invalid").Inc()
		return c.Render(http.StatusOK, "login.html", loginPage{Error: "Invalid email or password", Email: email})
	case errors.Is(err, domain.ErrTooManyAttempts):
		metrics.AdminLoginsTotal.WithLabelValues("throttled").Inc()
		return c.Render(http.StatusTooManyRequests, "login.html", loginPage{
			Error: "Too many login attempts. Please try again later.",
			Email: email,
		})
	case err != nil:
		metrics.AdminLoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.AdminLoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, AdminDashboardPath)
}

// Dashboard handles GET /admin-dashboard. The AdminSession middleware guards it.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	now := h.now()
	summary, err := h.reports.Dashboard(c.Request().Context(), now)
	if err != nil {
		return err
	}

	email, _ := c.Get("admin_email").(string)
	return c.Render(http.StatusOK, "dashboard.html", dashboardPage{
		AdminEmail:    email,
		CheckInsToday: summary.CheckInsToday,
		Active:        dashboardRows(summary.Active),
		Recent:        dashboardRows(summary.RecentVisits),
		GeneratedAt:   now.Format(displayTimeLayout),
	})
}

// Logout handles POST /admin-logout. The cookie is cleared even when the
// server-side session could not be removed.
func (h *AdminHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		if err := h.admins.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("failed to delete admin session")
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, AdminLoginPath)
}

func dashboardRows(visits []domain.Visit) []dashboardRow {
	rows := make([]dashboardRow, 0, len(visits))
	for i := range visits {
		v := &visits[i]
		row := dashboardRow{
			Purpose:  v.Purpose,
			HostName: v.HostName,
			CheckIn:  v.CheckInTime.Format(displayTimeLayout),
			CheckOut: "-",
			Duration: v.DurationFormatted(),
			Status:   v.Status(),
		}
		if v.Visitor != nil {
			row.VisitorName = v.Visitor.Name
			row.Email = v.Visitor.Email
			row.Phone = v.Visitor.Phone
		}
		if v.CheckOutTime != nil {
			row.CheckOut = v.CheckOutTime.Format(displayTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}
