package routes

import (
	"github.com/Z5Jonathan-maker/Eden-2-sub001/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	eventHandler *handlers.EventHandler,
	competitionHandler *handlers.CompetitionHandler,
	seasonHandler *handlers.SeasonHandler,
	profileHandler *handlers.ProfileHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/events", eventHandler.IngestHandler)

	router.Route("/competitions", func(r chi.Router) {
		r.Get("/", competitionHandler.ListHandler)
		r.Post("/", competitionHandler.CreateHandler)

		r.Route("/{competitionID}", func(r chi.Router) {
			r.Get("/", competitionHandler.GetByIDHandler)
			r.Post("/activate", competitionHandler.ActivateHandler)
			r.Post("/participants", competitionHandler.EnrollHandler)
			r.Get("/standings", competitionHandler.StandingsHandler)
			r.Post("/settle", competitionHandler.SettleHandler)
			r.Get("/results", competitionHandler.ResultsHandler)
			r.Post("/baselines", competitionHandler.ComputeBaselinesHandler)
			r.Get("/lottery-qualifiers", competitionHandler.LotteryQualifiersHandler)
		})
	})

	router.Route("/seasons/{seasonID}", func(r chi.Router) {
		r.Get("/standings", seasonHandler.StandingsHandler)
		r.Post("/standings/rebuild", seasonHandler.RebuildHandler)
	})

	router.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/profile", profileHandler.GetProfileHandler)
		r.Get("/notifications", profileHandler.ListNotificationsHandler)
	})

	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)
}
