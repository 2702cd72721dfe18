package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// SetupRouter настраивает маршруты API сервиса вычислений
func SetupRouter(h *JobHandler) *mux.Router {
	r := mux.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/operation", h.SubmitOperation).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/result/{id}", h.GetResult).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/operations", h.ListOperations).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SendErrorResponse(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
