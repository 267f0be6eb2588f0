package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtside/tournament-engine/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	teamHandler *handlers.TeamHandler,
	poolHandler *handlers.PoolHandler,
	matchHandler *handlers.MatchHandler,
	bracketHandler *handlers.BracketHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		// Commands: event setup.
		r.Post("/teams", teamHandler.RegisterTeamHandler)
		r.Put("/teams/{teamID}/seed", teamHandler.UpdateSeedHandler)
		r.Post("/pools", poolHandler.CreatePoolHandler)

		// Commands: match lifecycle.
		r.Post("/matches/{matchID}/call", matchHandler.CallMatchHandler)
		r.Post("/matches/{matchID}/start", matchHandler.StartMatchHandler)
		r.Post("/matches/{matchID}/score", matchHandler.SubmitScoreHandler)
		r.Post("/matches/{matchID}/forfeit", matchHandler.MarkForfeitHandler)

		// Commands: bracket administration.
		r.Post("/brackets", bracketHandler.GenerateBracketHandler)
		r.Post("/matches/{matchID}/advance", bracketHandler.ManualAdvanceHandler)
		r.Delete("/matches/{matchID}/advance", bracketHandler.UndoAdvancementHandler)

		// Queries: derived views, safe without locking.
		r.Get("/teams", teamHandler.ListTeamsHandler)
		r.Get("/pools/{poolID}/standings", standingsHandler.GetPoolStandingsHandler)
		r.Get("/brackets/{bracketID}", bracketHandler.GetBracketStatusHandler)
		r.Get("/brackets/{bracketID}/rounds/{roundNumber}/complete", bracketHandler.IsRoundCompleteHandler)
		r.Get("/brackets/{bracketID}/champion", bracketHandler.GetChampionHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
