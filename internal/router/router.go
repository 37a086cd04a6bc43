// Package router wires the HTTP routes to their handlers and attaches
// middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/handler"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Donors     *handler.DonorHandler
	Patients   *handler.PatientHandler
	Matches    *handler.MatchHandler
	Messages   *handler.MessageHandler
	Donations  *handler.DonationHandler
	Rewards    *handler.RewardHandler
	Prediction *handler.PredictionHandler
	Chat       *handler.ChatHandler
}

// Register mounts every /api route. The cached middleware, when not
// nil, wraps the read-heavy catalog routes; everything else is served
// fresh.
func Register(e *echo.Echo, h Handlers, cached echo.MiddlewareFunc) {
	api := e.Group("/api")

	api.POST("/login", h.Auth.Login)

	api.POST("/users", h.Users.Create)
	api.GET("/users/:id", h.Users.Get)
	api.PUT("/users/:id", h.Users.Update)

	api.POST("/donors", h.Donors.Create)
	api.GET("/donors/user/:userId", h.Donors.GetByUser)

	api.POST("/patients", h.Patients.Create)
	api.GET("/patients/user/:userId", h.Patients.GetByUser)

	api.POST("/matches", h.Matches.Create)
	api.GET("/matches/patient/:patientId", h.Matches.ListByPatient)
	api.GET("/matches/donor/:donorId", h.Matches.ListByDonor)
	api.PUT("/matches/:id/status", h.Matches.UpdateStatus)

	api.POST("/messages", h.Messages.Send)
	api.GET("/messages/:user1Id/:user2Id", h.Messages.Thread)
	api.GET("/conversations/:userId", h.Messages.Conversations)
	api.PUT("/messages/read", h.Messages.MarkRead)

	api.POST("/donations", h.Donations.Record)
	api.GET("/donation-history/:donorId", h.Donations.History)

	api.GET("/donor-badges/:donorId", h.Rewards.ListBadges)
	api.GET("/blockchain-tokens/:donorId", h.Rewards.ListTokens)
	api.POST("/donor-rewards", h.Rewards.CreateReward)
	api.POST("/donor-rewards/:id/redeem", h.Rewards.Redeem)
	api.GET("/reward-redemptions/:donorId", h.Rewards.Redemptions)

	api.POST("/ml-predictions", h.Prediction.Ingest)
	api.GET("/ml-prediction/:patientId", h.Prediction.Latest)

	api.POST("/ai-chat", h.Chat.Reply)

	// Catalog reads tolerate a short staleness window, so they sit
	// behind the response cache when Redis is available.
	if cached == nil {
		cached = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	api.GET("/donor-rewards", h.Rewards.Catalog, cached)
	api.GET("/leaderboard", h.Donors.Leaderboard, cached)
	api.GET("/donors/blood-group/:bloodGroup", h.Donors.ListByBloodGroup, cached)
}
