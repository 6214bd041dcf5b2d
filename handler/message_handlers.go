package handler

import (
	"context"
	"net/http"
	"strconv"

	"wa-web-bridge/journal"
)

const (
	defaultMessagesLimit = 20
	maxMessagesLimit     = 100
)

// Handle check-whatsapp: report the connection status and, when connected,
// relay the message once.
func (h *Handler) handleCheckWhatsApp(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	phoneNumber := query.Get("phoneNumber")
	message := query.Get("message")

	if phoneNumber == "" || message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Phone number and message are required"})
		return
	}

	entry := &journal.Entry{PhoneNumber: phoneNumber, Message: message}

	if !h.wa.IsReady() {
		entry.Status = journal.StatusSkipped
		h.record(r.Context(), entry)
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  "not_connected",
			Message: "WhatsApp Web is not connected",
		})
		return
	}

	entry.ChatID = NormalizePhoneNumber(phoneNumber)

	if err := h.wa.SendMessage(r.Context(), entry.ChatID, message); err != nil {
		h.log.Error().Err(err).Str("chat_id", entry.ChatID).Msg("Error sending message")
		entry.Status = journal.StatusFailed
		entry.Error = err.Error()
		h.record(r.Context(), entry)
		writeJSON(w, http.StatusInternalServerError, sendErrorResponse{
			Error:   "Failed to send message",
			Details: err.Error(),
		})
		return
	}

	h.log.Info().Str("chat_id", entry.ChatID).Msgf("Message sent to %s", phoneNumber)
	entry.Status = journal.StatusSent
	h.record(r.Context(), entry)
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "connected",
		Message: "Message sent successfully",
	})
}

// Handle messages: list the most recent relay attempts.
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultMessagesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxMessagesLimit)
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read journal")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to read message journal"})
		return
	}

	writeJSON(w, http.StatusOK, messagesResponse{
		Total:    len(entries),
		Messages: entries,
	})
}

// record never affects the response; the entry is kept even if the client
// has already gone away.
func (h *Handler) record(ctx context.Context, entry *journal.Entry) {
	if err := h.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		h.log.Warn().Err(err).Str("status", string(entry.Status)).Msg("Failed to record journal entry")
	}
}
