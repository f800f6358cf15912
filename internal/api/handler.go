package api

import (
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"

	"github.com/SherClockHolmes/webpush-go"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	hub     *ws.Hub
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, hub *ws.Hub, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		hub:     hub,
		webpush: webpushOptions,
	}
}
