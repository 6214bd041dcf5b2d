package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"wa-web-bridge/config"
	"wa-web-bridge/handler"
	"wa-web-bridge/journal"
	"wa-web-bridge/whatsapp"
)

const version = "1.0.0"

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := newLogger("info")
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open message journal")
	}
	defer store.Close()

	client, err := whatsapp.New(ctx, whatsapp.Options{
		StoreDSN:      cfg.StoreDSN(),
		LogLevel:      cfg.WALogLevel,
		AutoReconnect: cfg.AutoReconnect,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer client.Close()

	var qrOut io.Writer
	if cfg.PrintQRTerminal {
		qrOut = os.Stdout
	}
	client.OnEvent(handler.NewEventLogger(log, qrOut).Handle)

	if err := client.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}

	h := handler.New(client, store, log, handler.Options{
		QRWaitTimeout:   cfg.QRWaitTimeout,
		DemoPhoneNumber: cfg.DemoPhoneNumber,
		DemoMessage:     cfg.DemoMessage,
		Version:         version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SetupCORS(h.SetupRoutes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("Server running on http://localhost:%d", cfg.Port)
		log.Info().Msg("Available endpoints:")
		log.Info().Msg("   GET  / - Landing page")
		log.Info().Msg("   GET  /check-whatsapp?phoneNumber=&message= - Send a message if connected")
		log.Info().Msg("   GET  /qr - Next login QR code")
		log.Info().Msg("   GET  /health - Health check")
		log.Info().Msg("   GET  /messages?limit= - Recent send attempts")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
