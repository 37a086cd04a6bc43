package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// PatientHandler serves patient profiles.
type PatientHandler struct {
	Patients *repository.PatientRepo
	Users    *repository.UserRepo
}

func NewPatientHandler(p *repository.PatientRepo, u *repository.UserRepo) *PatientHandler {
	return &PatientHandler{Patients: p, Users: u}
}

// Create registers a patient profile for an existing user.
func (h *PatientHandler) Create(c echo.Context) error {
	var p model.Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	model.ApplyPatientDefaults(&p)
	if errs := model.ValidatePatient(&p); errs != nil {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, p.UserID); err != nil {
		return storageErr(c, err, "user")
	}
	if err := h.Patients.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "patient profile already exists"})
		}
		return storageErr(c, err, "patient")
	}
	return c.JSON(http.StatusCreated, p)
}

// GetByUser returns the patient profile owned by a user.
func (h *PatientHandler) GetByUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return notFound(c, "patient")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Patients.GetByUserID(ctx, userID)
	if err != nil {
		return storageErr(c, err, "patient")
	}
	return c.JSON(http.StatusOK, p)
}
