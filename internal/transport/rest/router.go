package rest

import (
	"net/http"
	"strings"

	_ "formsapi/docs"
	"formsapi/internal/service"
	"formsapi/internal/transport/rest/handler"
	"formsapi/internal/transport/rest/middleware"
	"formsapi/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	UserService        *service.UserService
	FormService        *service.FormService
	ResultService      *service.ResultService
	WSHub              *ws.Hub
	CORSAllowedOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	userHandler := handler.NewUserHandler(c.UserService)
	formHandler := handler.NewFormHandler(c.FormService, c.ResultService)
	wsHandler := ws.NewHandler(c.WSHub, c.FormService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.RequestLogger)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	// Public routes
	r.HandleFunc("/users", userHandler.SignUp).Methods("POST", "OPTIONS")
	r.HandleFunc("/forms", formHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/forms", formHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/forms/{id}", formHandler.Get).Methods("GET", "OPTIONS")
	r.HandleFunc("/forms/{id}/results", formHandler.Results).Methods("GET", "OPTIONS")
	r.HandleFunc("/forms/{id}/results/live", wsHandler.ResultsWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Basic auth routes
	basicRoutes := r.NewRoute().Subrouter()
	basicRoutes.Use(authMW.RequireBasic)
	basicRoutes.HandleFunc("/users/signin", authHandler.SignIn).Methods("POST", "OPTIONS")

	// Bearer routes
	bearerRoutes := r.NewRoute().Subrouter()
	bearerRoutes.Use(authMW.RequireBearer)
	bearerRoutes.HandleFunc("/users", userHandler.List).Methods("GET", "OPTIONS")
	bearerRoutes.HandleFunc("/users", userHandler.Update).Methods("PATCH", "OPTIONS")
	bearerRoutes.HandleFunc("/users/me", userHandler.Me).Methods("GET", "OPTIONS")
	bearerRoutes.HandleFunc("/users/{id}", userHandler.Get).Methods("GET", "OPTIONS")
	bearerRoutes.HandleFunc("/forms/{id}/results", formHandler.SubmitResult).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	origins := strings.Join(allowedOrigins, ", ")
	if origins == "" {
		origins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
