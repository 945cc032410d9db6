package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/examdesk/examdesk/internal/core/ports"
)

func NewHandler(authHandler *AuthHandler, tokens ports.TokenService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(Authenticator(tokens))
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})
	})

	// Browser navigation authenticates through the session cookie.
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(tokens))
		r.Get("/dashboard", authHandler.Dashboard)
	})

	return r
}
