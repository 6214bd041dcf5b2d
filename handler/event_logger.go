package handler

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"

	"wa-web-bridge/whatsapp"
)

// EventLogger writes one line per WhatsApp lifecycle event. It only
// observes; it never reconnects or re-authenticates.
type EventLogger struct {
	log   zerolog.Logger
	qrOut io.Writer
}

// NewEventLogger returns a logger for lifecycle events. When qrOut is not nil
// each QR code is also drawn on it.
func NewEventLogger(log zerolog.Logger, qrOut io.Writer) *EventLogger {
	return &EventLogger{log: log, qrOut: qrOut}
}

// Handle is meant to be registered with whatsapp.Client.OnEvent.
func (l *EventLogger) Handle(evt whatsapp.Event) {
	switch evt.Type {
	case whatsapp.EventQR:
		l.log.Info().Msg("QR code received, scan it with WhatsApp")
		if l.qrOut != nil {
			qrterminal.GenerateHalfBlock(evt.Payload, qrterminal.L, l.qrOut)
		}
	case whatsapp.EventReady:
		l.log.Info().Msg("WhatsApp Web is connected!")
	case whatsapp.EventAuthFailure:
		l.log.Error().Msgf("Authentication failed: %s", evt.Payload)
	case whatsapp.EventDisconnected:
		l.log.Warn().Msgf("Disconnected from WhatsApp Web: %s", evt.Payload)
	default:
		l.log.Debug().Str("event", string(evt.Type)).Msg("Unknown lifecycle event")
	}
}
