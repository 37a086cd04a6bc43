package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/service"
)

// MatchHandler serves match creation, listing and lifecycle updates.
type MatchHandler struct {
	Matching *service.MatchService
}

func NewMatchHandler(m *service.MatchService) *MatchHandler { return &MatchHandler{Matching: m} }

type createMatchReq struct {
	DonorID    uint64   `json:"donorId"`
	PatientID  uint64   `json:"patientId"`
	DistanceKm *float64 `json:"distanceKm"`
}

// Create scores a donor/patient pairing and stores a pending match.
// When distanceKm is omitted, the distance comes from the two users'
// coordinates.
func (h *MatchHandler) Create(c echo.Context) error {
	var req createMatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.DonorID == 0 || req.PatientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "donorId and patientId required"})
	}
	dist := -1.0
	if req.DistanceKm != nil {
		if *req.DistanceKm < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "distanceKm must not be negative"})
		}
		dist = *req.DistanceKm
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Matching.CreateMatch(ctx, req.DonorID, req.PatientID, dist)
	if err != nil {
		return storageErr(c, err, "donor or patient")
	}
	return c.JSON(http.StatusCreated, m)
}

// ListByPatient returns a patient's matches with donor details.
func (h *MatchHandler) ListByPatient(c echo.Context) error {
	patientID, ok := pathID(c, "patientId")
	if !ok {
		return notFound(c, "patient")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	matches, err := h.Matching.Matches.ListByPatient(ctx, patientID)
	if err != nil {
		return storageErr(c, err, "matches")
	}
	return c.JSON(http.StatusOK, matches)
}

// ListByDonor returns a donor's matches with patient details.
func (h *MatchHandler) ListByDonor(c echo.Context) error {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	matches, err := h.Matching.Matches.ListByDonor(ctx, donorID)
	if err != nil {
		return storageErr(c, err, "matches")
	}
	return c.JSON(http.StatusOK, matches)
}

type updateStatusReq struct {
	Status        string     `json:"status"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

// UpdateStatus advances a match along its lifecycle.
func (h *MatchHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "match")
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if !model.IsValidMatchStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Matching.Transition(ctx, id, req.Status, req.ScheduledDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid status transition"})
		case errors.Is(err, service.ErrIncompatible):
			return c.JSON(http.StatusConflict, echo.Map{"message": "blood groups incompatible"})
		default:
			return storageErr(c, err, "match")
		}
	}
	return c.JSON(http.StatusOK, m)
}
