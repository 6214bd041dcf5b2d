package handler

import (
	"context"
	"time"

	"wa-web-bridge/journal"
	"wa-web-bridge/whatsapp"
)

//go:generate mockgen -source=types.go -destination=../mocks/mock_handler.go -package=mocks

// Messenger is the part of the WhatsApp client the HTTP layer relies on.
type Messenger interface {
	IsReady() bool
	SendMessage(ctx context.Context, chatID, text string) error
	NextQR(ctx context.Context) (string, error)
	State() whatsapp.State
}

// Journal records every relay attempt.
type Journal interface {
	Record(ctx context.Context, entry *journal.Entry) error
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Options tunes the HTTP layer.
type Options struct {
	// QRWaitTimeout bounds /qr requests. Zero waits until the client goes away.
	QRWaitTimeout   time.Duration
	DemoPhoneNumber string
	DemoMessage     string
	Version         string
}

// Response structures
type errorResponse struct {
	Error string `json:"error"`
}

type sendErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type qrResponse struct {
	QRCode string `json:"qr_code"`
}

type healthResponse struct {
	Status    string `json:"status"`
	WhatsApp  bool   `json:"whatsapp"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type messagesResponse struct {
	Total    int             `json:"total"`
	Messages []journal.Entry `json:"messages"`
}
