package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/skip2/go-qrcode"
	"github.com/vincent-petithory/dataurl"

	"wa-web-bridge/whatsapp"
)

const qrImageSize = 256

// RenderQRDataURL draws code as a PNG and returns it as an embeddable
// data:image/png;base64 URL.
func RenderQRDataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return dataurl.New(png, "image/png").String(), nil
}

// Handle qr: wait for the next QR code the client emits and return it as an
// image. Requests made before any code is emitted stay pending until one is.
func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	if h.wa.IsReady() {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "WhatsApp Web is already connected"})
		return
	}

	ctx := r.Context()
	if h.opts.QRWaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.QRWaitTimeout)
		defer cancel()
	}

	code, err := h.wa.NextQR(ctx)
	switch {
	case errors.Is(err, whatsapp.ErrAlreadyReady):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "WhatsApp Web is already connected"})
		return
	case errors.Is(err, whatsapp.ErrAlreadyPaired):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "WhatsApp Web is paired but not connected"})
		return
	case errors.Is(err, whatsapp.ErrNoPairing):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "No QR pairing in progress"})
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "Timed out waiting for QR code"})
		return
	case errors.Is(err, context.Canceled):
		h.log.Debug().Err(err).Msg("QR request abandoned")
		writeJSON(w, http.StatusRequestTimeout, errorResponse{Error: "Request cancelled before a QR code was emitted"})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Error waiting for QR code")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error waiting for QR code"})
		return
	}

	url, err := RenderQRDataURL(code)
	if err != nil {
		h.log.Error().Err(err).Msg("Error generating QR code")
		http.Error(w, "Error generating QR code", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, qrResponse{QRCode: url})
}
