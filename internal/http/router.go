package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/misrecon/internal/http/artifact"
	"github.com/MrJamesThe3rd/misrecon/internal/http/process"
	"github.com/MrJamesThe3rd/misrecon/internal/http/respond"
	"github.com/MrJamesThe3rd/misrecon/internal/http/rules"
)

func New(
	processV1 *process.Handler,
	rulesV1 *rules.Handler,
	artifactsV1 *artifact.Handler,
	corsOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if len(corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{respond.ArtifactHeader, respond.BankReportHeader, "Content-Disposition"},
			MaxAge:         300,
		}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/process", processV1.Routes)

		r.Route("/inspect", processV1.InspectRoutes)

		r.Route("/artifacts", artifactsV1.Routes)

		r.Route("/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			rulesV1.Routes(r)
		})
	})

	return router
}
