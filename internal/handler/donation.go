package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
	"github.com/blood-uber/server/internal/service"
)

// DonationHandler records donations and serves donation history.
type DonationHandler struct {
	Accrual   *service.AccrualService
	Donations *repository.DonationRepo
	Donors    *repository.DonorRepo
	Patients  *repository.PatientRepo
}

func NewDonationHandler(a *service.AccrualService, dh *repository.DonationRepo,
	d *repository.DonorRepo, p *repository.PatientRepo) *DonationHandler {
	return &DonationHandler{Accrual: a, Donations: dh, Donors: d, Patients: p}
}

// Record stores a donation. A completed donation also bumps the
// donor's counters, badge progress and token ledger in one
// transaction; the response carries everything that changed.
func (h *DonationHandler) Record(c echo.Context) error {
	var d model.DonationHistory
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	model.ApplyDonationDefaults(&d)
	if errs := model.ValidateDonation(&d); errs != nil {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Donors.GetByID(ctx, d.DonorID); err != nil {
		return storageErr(c, err, "donor")
	}
	if _, err := h.Patients.GetByID(ctx, d.PatientID); err != nil {
		return storageErr(c, err, "patient")
	}

	res, err := h.Accrual.RecordDonation(ctx, &d)
	if err != nil {
		return storageErr(c, err, "donation")
	}
	return c.JSON(http.StatusCreated, res)
}

// History returns a donor's donations with patient details, newest
// first.
func (h *DonationHandler) History(c echo.Context) error {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Donations.ListByDonor(ctx, donorID)
	if err != nil {
		return storageErr(c, err, "donation history")
	}
	return c.JSON(http.StatusOK, list)
}
