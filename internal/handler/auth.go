package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/config"
	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
	"github.com/blood-uber/server/internal/utils"
)

// AuthHandler serves the login flow. Login is a lookup by email, not a
// credential check; its job is routing the user to the right dashboard
// and issuing an identity token for request attribution.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Donors   *repository.DonorRepo
	Patients *repository.PatientRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, d *repository.DonorRepo, p *repository.PatientRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Donors: d, Patients: p}
}

type loginReq struct {
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

type loginResp struct {
	Success                bool                `json:"success"`
	User                   model.User          `json:"user"`
	HealthDetailsCompleted bool                `json:"healthDetailsCompleted"`
	RedirectTo             string              `json:"redirectTo"`
	Identity               utils.IdentityToken `json:"identity"`
}

// Login resolves a user by email and tells the client which dashboard
// to open. An unknown email yields 401 with success:false.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unknown email"})
		}
		return storageErr(c, err, "user")
	}

	// The requested role decides the dashboard for "both" accounts;
	// otherwise the stored type wins.
	role := strings.ToLower(strings.TrimSpace(req.UserType))
	if role != model.UserTypeDonor && role != model.UserTypePatient {
		role = u.UserType
	}
	if u.UserType != model.UserTypeBoth && role != u.UserType {
		role = u.UserType
	}
	if role == model.UserTypeBoth {
		role = model.UserTypeDonor
	}

	completed := false
	redirect := "/dashboard-patient"
	if role == model.UserTypeDonor {
		redirect = "/dashboard-donor"
		if _, err := h.Donors.GetByUserID(ctx, u.ID); err == nil {
			completed = true
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storageErr(c, err, "donor")
		}
	} else {
		if _, err := h.Patients.GetByUserID(ctx, u.ID); err == nil {
			completed = true
		} else if !errors.Is(err, repository.ErrNotFound) {
			return storageErr(c, err, "patient")
		}
	}

	tok, err := utils.NewIdentityToken(h.Cfg.JWTSecret, u.ID, role, h.Cfg.IdentityTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		Success:                true,
		User:                   u,
		HealthDetailsCompleted: completed,
		RedirectTo:             redirect,
		Identity:               tok,
	})
}
