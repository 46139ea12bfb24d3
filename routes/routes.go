package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/openleague/league-system/handlers"
	"github.com/openleague/league-system/middleware"
	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/services"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Event      *handlers.EventHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes wires the HTTP surface: public reads, authenticated organizer
// writes, websocket subscriptions and the swagger UI.
func SetupRoutes(h Handlers, auth services.AuthService) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.RegisterHandler)
	router.Post("/auth/login", h.Auth.LoginHandler)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", h.Event.ListHandler)
		r.Get("/{eventID}", h.Event.GetByIDHandler)
		r.Get("/{eventID}/tournaments", h.Event.ListTournamentsHandler)
		r.Get("/{eventID}/leaderboard", h.Event.LeaderboardHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(auth))
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", h.Event.CreateHandler)
			r.Delete("/{eventID}", h.Event.DeleteHandler)
			r.Post("/{eventID}/logo", h.Event.UploadEventLogoHandler)
			r.Post("/{eventID}/teams", h.Event.CreateTeamHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(auth))
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Delete("/{teamID}", h.Event.DeleteTeamHandler)
			r.Post("/{teamID}/logo", h.Event.UploadTeamLogoHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/standings", h.Tournament.StandingsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(auth))
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", h.Tournament.CreateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)

			r.Post("/{tournamentID}/participants", h.Tournament.AddParticipantHandler)
			r.Delete("/{tournamentID}/participants/{participantID}", h.Tournament.RemoveParticipantHandler)
			r.Put("/{tournamentID}/seeds", h.Tournament.SetSeedsHandler)

			r.Post("/{tournamentID}/start", h.Tournament.StartHandler)
			r.Post("/{tournamentID}/reopen", h.Tournament.ReopenHandler)
			r.Post("/{tournamentID}/rounds", h.Tournament.AdvanceRoundHandler)

			r.Post("/{tournamentID}/matches/{matchID}/results", h.Tournament.RecordResultHandler)
			r.Delete("/{tournamentID}/matches/{matchID}/results", h.Tournament.UndoResultHandler)
			r.Post("/{tournamentID}/matches/{matchID}/forfeit", h.Tournament.ForfeitHandler)

			r.Post("/{tournamentID}/groups/{groupID}/results", h.Tournament.RecordGroupResultHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.SubscribeHandler)

	return router
}
