package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Handler serves the HTTP facade over a Messenger.
type Handler struct {
	wa      Messenger
	journal Journal
	log     zerolog.Logger
	opts    Options
}

func New(wa Messenger, j Journal, log zerolog.Logger, opts Options) *Handler {
	return &Handler{wa: wa, journal: j, log: log, opts: opts}
}

// Setup routes for the application
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.handleLandingPage).Methods("GET")
	r.HandleFunc("/check-whatsapp", h.handleCheckWhatsApp).Methods("GET")
	r.HandleFunc("/qr", h.handleQR).Methods("GET")

	r.HandleFunc("/health", h.handleHealthCheck).Methods("GET")
	r.HandleFunc("/messages", h.handleMessages).Methods("GET")

	return r
}

// Setup CORS middleware
func SetupCORS(r *mux.Router) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}).Handler(r)
}

func (h *Handler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		WhatsApp:  h.wa.IsReady(),
		State:     string(h.wa.State()),
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.opts.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
