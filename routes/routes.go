package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/padelhub/padelhub-server/handlers"
	"github.com/padelhub/padelhub-server/middleware"
	"github.com/padelhub/padelhub-server/services"
)

func SetupRoutes(
	router *chi.Mux,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	matchHandler *handlers.MatchHandler,
	messageHandler *handlers.MessageHandler,
	notificationHandler *handlers.NotificationHandler,
	imageProxyHandler *handlers.ImageProxyHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(authService)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/google", authHandler.GoogleSignIn)
		r.Get("/verify", authHandler.VerifySession)
	})

	router.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateUser)
		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}", userHandler.GetUserByID)
		r.Put("/{id}", userHandler.UpdateUserByID)
		r.Delete("/{id}", userHandler.DeleteUserByID)
		r.Get("/{id}/matches", userHandler.GetUserMatches)
		r.Post("/{id}/picture", userHandler.UploadProfilePicture)
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Post("/", clubHandler.CreateClub)
		r.Get("/", clubHandler.ListClubs)
		r.Get("/{id}", clubHandler.GetClubByID)
		r.Patch("/{id}", clubHandler.UpdateClubByID)
		r.Delete("/{id}", clubHandler.DeleteClubByID)
		r.Post("/{id}/picture", clubHandler.UploadClubPicture)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateMatch)
		r.Get("/", matchHandler.ListMatches)
		r.Get("/{id}", matchHandler.GetMatchByID)
		r.Patch("/{id}", matchHandler.UpdateMatchByID)
		r.Delete("/{id}", matchHandler.DeleteMatchByID)

		r.Get("/{id}/players", matchHandler.GetMatchPlayers)
		r.Post("/{id}/players", matchHandler.AddPlayer)
		r.Delete("/{id}/players/{userId}", matchHandler.RemovePlayer)
		r.Put("/{id}/players/{userId}/team", matchHandler.UpdatePlayerTeam)

		r.Get("/{id}/messages", messageHandler.ListMessages)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{id}/messages", messageHandler.CreateMessage)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Delete("/messages/{messageId}", messageHandler.DeleteMessage)
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Get("/vapid-public-key", notificationHandler.GetVAPIDPublicKey)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/subscribe", notificationHandler.Subscribe)
			r.Post("/unsubscribe", notificationHandler.Unsubscribe)
			r.Get("/subscriptions", notificationHandler.ListSubscriptions)
			r.Post("/test", notificationHandler.SendTestNotification)
			r.Get("/history", notificationHandler.GetHistory)
		})
	})

	router.Get("/api/image-proxy", imageProxyHandler.ProxyImage)

	router.Get("/ws/matches/{matchId}/chat", webSocketHandler.ServeMatchChat)
}
