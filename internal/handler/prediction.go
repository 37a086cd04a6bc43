package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// PredictionHandler serves transfusion-need forecasts. Rows come from
// an external forecasting job through Ingest; this service only stores
// and serves them.
type PredictionHandler struct {
	Predictions *repository.PredictionRepo
	Patients    *repository.PatientRepo
}

func NewPredictionHandler(pr *repository.PredictionRepo, p *repository.PatientRepo) *PredictionHandler {
	return &PredictionHandler{Predictions: pr, Patients: p}
}

// Latest returns the most recent forecast for a patient.
func (h *PredictionHandler) Latest(c echo.Context) error {
	patientID, ok := pathID(c, "patientId")
	if !ok {
		return notFound(c, "patient")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Predictions.GetLatestByPatient(ctx, patientID)
	if err != nil {
		return storageErr(c, err, "prediction")
	}
	return c.JSON(http.StatusOK, p)
}

// Ingest stores a forecast row produced by the external job.
func (h *PredictionHandler) Ingest(c echo.Context) error {
	var p model.MLPrediction
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := model.ValidatePrediction(&p); errs != nil {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Patients.GetByID(ctx, p.PatientID); err != nil {
		return storageErr(c, err, "patient")
	}
	if err := h.Predictions.Create(ctx, &p); err != nil {
		return storageErr(c, err, "prediction")
	}
	return c.JSON(http.StatusCreated, p)
}
