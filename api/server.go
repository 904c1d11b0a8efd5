/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the browser frontend

ROUTE GROUPS:
  /api/calculate        Stateless calculation
  /api/limits           Limit selection
  /api/persons/*        Persons and their contracts
  /api/sessions/*       Saved sessions
  /api/scenarios/*      Demo scenarios
  /api/state            Whole workspace

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/tempwork/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Get("/state", h.GetState)

		r.Route("/limits", func(r chi.Router) {
			r.Get("/", h.GetLimits)
			r.Put("/", h.SetLimit)
		})

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.CreatePerson)
			r.Delete("/", h.ClearPersons)
			r.Get("/{id}", h.GetPerson)
			r.Put("/{id}", h.UpdatePerson)
			r.Delete("/{id}", h.DeletePerson)
			r.Post("/{id}/contracts", h.CreateContract)
			r.Put("/{id}/contracts/{contractID}", h.UpdateContract)
			r.Delete("/{id}/contracts/{contractID}", h.DeleteContract)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.SaveSession)
			r.Delete("/", h.ClearSessions)
			r.Post("/{name}/load", h.LoadSession)
			r.Delete("/{name}", h.DeleteSession)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Temporary Work Calculator</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Temporary Work Calculator API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/persons">/api/persons</a> - Persons and their periods</li>
<li><a href="/api/limits">/api/limits</a> - Day limits</li>
<li><a href="/api/sessions">/api/sessions</a> - Saved sessions</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
