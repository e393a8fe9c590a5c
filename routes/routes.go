package routes

import (
	"net/http"

	"github.com/Dosada05/sabo-arena/handlers"
	"github.com/Dosada05/sabo-arena/middleware"
	"github.com/Dosada05/sabo-arena/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/sabo-arena/docs"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Post("/auth/login", h.Auth.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Get("/participants", h.Tournament.ListParticipantsHandler)

			r.Route("/bracket", func(r chi.Router) {
				r.Get("/", h.Bracket.GetHandler)
				r.Get("/progress", h.Bracket.ProgressHandler)
				r.Get("/validation", h.Bracket.ValidationHandler)
			})

			r.Get("/matches/ready", h.Bracket.ReadyMatchesHandler)
			r.Get("/matches/pending", h.Bracket.PendingMatchesHandler)
			r.Get("/matches/{matchID}", h.Match.GetHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))
				r.Use(middleware.Authorize(services.RoleAdmin))

				r.Post("/participants", h.Tournament.RegisterParticipantHandler)
				r.Post("/bracket", h.Bracket.GenerateHandler)
				r.Post("/matches/{matchID}/result", h.Match.SubmitResultHandler)
				r.Post("/cancel", h.Tournament.CancelHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(services.RoleAdmin))

			r.Post("/", h.Tournament.CreateHandler)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
