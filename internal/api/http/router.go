package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/api/recovery"
	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/services"
)

// RouterDeps bundles what the router wires together. The GraphQL
// handlers are assembled in internal/gql and mounted here.
type RouterDeps struct {
	Authorizer auth.Authorizer
	CVService  *services.CVService
	Users      *services.UserService
	Health     HealthPinger
	GraphQL    http.Handler
	GraphQLWS  http.Handler
	KeepAlive  time.Duration
	Log        zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	cvHandler := NewCVHandler(d.CVService)
	userHandler := NewUserHandler(d.Users)
	healthHandler := NewHealthHandler(d.Health)
	sseHandler := NewSSEHandler(d.Authorizer, d.CVService, d.KeepAlive, d.Log)

	// Health
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Users (account provisioning; credentials live with the external
	// auth collaborator)
	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users/{userId}", userHandler.GetUser).Methods("GET")

	// CVs, behind bearer auth
	authed := router.PathPrefix("/api/cvs").Subrouter()
	authed.Use(AuthMiddleware(d.Authorizer))
	authed.HandleFunc("", cvHandler.CreateCV).Methods("POST")
	authed.HandleFunc("", cvHandler.ListCVs).Methods("GET")
	authed.HandleFunc("/{cvId}", cvHandler.GetCV).Methods("GET")
	authed.HandleFunc("/{cvId}", cvHandler.UpdateCV).Methods("PATCH")
	authed.HandleFunc("/{cvId}", cvHandler.DeleteCV).Methods("DELETE")

	// Real-time sync: SSE authenticates inside the session so errors
	// reach EventSource clients as data events.
	router.HandleFunc("/cv-updates/{cvId}", sseHandler.StreamCVUpdates).Methods("GET")

	// GraphQL: POST for queries/mutations, websocket upgrade for
	// subscriptions.
	if d.GraphQLWS != nil {
		router.Handle("/graphql", d.GraphQLWS).Methods("GET")
	}
	if d.GraphQL != nil {
		router.Handle("/graphql", d.GraphQL).Methods("POST")
	}

	return router
}
