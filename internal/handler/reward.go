package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
	"github.com/blood-uber/server/internal/service"
)

// RewardHandler serves badges, the token ledger, the reward catalog
// and redemption.
type RewardHandler struct {
	Rewards    *service.RewardService
	RewardRepo *repository.RewardRepo
	Badges     *repository.BadgeRepo
	Tokens     *repository.TokenRepo
}

func NewRewardHandler(rs *service.RewardService, rr *repository.RewardRepo,
	b *repository.BadgeRepo, t *repository.TokenRepo) *RewardHandler {
	return &RewardHandler{Rewards: rs, RewardRepo: rr, Badges: b, Tokens: t}
}

// Badges returns a donor's earned badges in the order earned.
func (h *RewardHandler) ListBadges(c echo.Context) error {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	badges, err := h.Badges.ListByDonor(ctx, donorID)
	if err != nil {
		return storageErr(c, err, "badges")
	}
	return c.JSON(http.StatusOK, badges)
}

// ListTokens returns a donor's token ledger, newest first.
func (h *RewardHandler) ListTokens(c echo.Context) error {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tokens, err := h.Tokens.ListByDonor(ctx, donorID)
	if err != nil {
		return storageErr(c, err, "tokens")
	}
	return c.JSON(http.StatusOK, tokens)
}

// Catalog returns the active reward catalog, cheapest first.
func (h *RewardHandler) Catalog(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rewards, err := h.RewardRepo.ListActive(ctx)
	if err != nil {
		return storageErr(c, err, "rewards")
	}
	return c.JSON(http.StatusOK, rewards)
}

// CreateReward adds a catalog entry.
func (h *RewardHandler) CreateReward(c echo.Context) error {
	var r model.DonorReward
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := model.ValidateReward(&r); errs != nil {
		return validationFailed(c, errs)
	}
	r.IsActive = true

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.RewardRepo.Create(ctx, &r); err != nil {
		return storageErr(c, err, "reward")
	}
	return c.JSON(http.StatusCreated, r)
}

type redeemReq struct {
	DonorID uint64 `json:"donorId"`
}

// Redeem spends a donor's tokens on a catalog reward.
func (h *RewardHandler) Redeem(c echo.Context) error {
	rewardID, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "reward")
	}
	var req redeemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.DonorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "donorId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	red, err := h.Rewards.Redeem(ctx, req.DonorID, rewardID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientTokens):
			return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient tokens"})
		case errors.Is(err, service.ErrRewardInactive):
			return c.JSON(http.StatusConflict, echo.Map{"message": "reward not active"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reward or donor not found"})
		default:
			return storageErr(c, err, "reward")
		}
	}
	return c.JSON(http.StatusCreated, red)
}

// Redemptions returns a donor's past redemptions, newest first.
func (h *RewardHandler) Redemptions(c echo.Context) error {
	donorID, ok := pathID(c, "donorId")
	if !ok {
		return notFound(c, "donor")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.RewardRepo.ListRedemptionsByDonor(ctx, donorID)
	if err != nil {
		return storageErr(c, err, "redemptions")
	}
	return c.JSON(http.StatusOK, list)
}
