package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires every route. The task routes sit behind the bearer
// auth middleware; register and login stay public.
func NewRouter(ah *AuthHandler, th *TaskHandler) http.Handler {
	r := chi.NewRouter()

	r.Post("/register", ah.RegisterHandler)
	r.Post("/login", ah.LoginHandler)

	//only callers with a valid bearer token reach these routes
	r.Route("/todos", func(r chi.Router) {
		r.Use(ah.AuthMiddleware)
		r.Get("/", th.ListHandler)
		r.Post("/", th.CreateHandler)
		r.Get("/{todoID}", th.GetHandler)
		r.Put("/{todoID}", th.UpdateHandler)
		r.Delete("/{todoID}", th.DeleteHandler)
		r.Post("/{todoID}/grant", th.GrantHandler)
		r.Post("/{todoID}/revoke", th.RevokeHandler)
	})

	return r
}
