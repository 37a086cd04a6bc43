package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// DonorHandler serves donor profiles, donor search and the leaderboard.
type DonorHandler struct {
	Donors *repository.DonorRepo
	Users  *repository.UserRepo
}

func NewDonorHandler(d *repository.DonorRepo, u *repository.UserRepo) *DonorHandler {
	return &DonorHandler{Donors: d, Users: u}
}

// Create registers a donor profile for an existing user.
func (h *DonorHandler) Create(c echo.Context) error {
	var d model.Donor
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := model.ValidateDonor(&d); errs != nil {
		return validationFailed(c, errs)
	}
	if d.BadgeLevel == "" {
		d.BadgeLevel = model.BadgeNovice
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, d.UserID); err != nil {
		return storageErr(c, err, "user")
	}
	if err := h.Donors.Create(ctx, &d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "donor profile already exists"})
		}
		return storageErr(c, err, "donor")
	}
	return c.JSON(http.StatusCreated, d)
}

// GetByUser returns the donor profile owned by a user.
func (h *DonorHandler) GetByUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Donors.GetByUserID(ctx, userID)
	if err != nil {
		return storageErr(c, err, "donor")
	}
	return c.JSON(http.StatusOK, d)
}

// ListByBloodGroup returns active donors with exactly the requested
// blood group. Clients often send "A+" percent-encoded or with the
// plus flattened to a space, so both forms are accepted.
func (h *DonorHandler) ListByBloodGroup(c echo.Context) error {
	bg := strings.ToUpper(strings.TrimSpace(c.Param("bloodGroup")))
	bg = strings.ReplaceAll(bg, " ", "+")
	if !model.IsValidBloodGroup(bg) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid blood group"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	donors, err := h.Donors.ListByBloodGroup(ctx, bg)
	if err != nil {
		return storageErr(c, err, "donors")
	}
	return c.JSON(http.StatusOK, donors)
}

// Leaderboard returns the top donors by completed donations.
func (h *DonorHandler) Leaderboard(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Donors.Leaderboard(ctx, limit)
	if err != nil {
		return storageErr(c, err, "leaderboard")
	}
	return c.JSON(http.StatusOK, entries)
}
