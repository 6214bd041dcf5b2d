package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

var (
	ErrNotReady       = errors.New("whatsapp client is not ready")
	ErrAlreadyReady   = errors.New("whatsapp client is already connected")
	ErrAlreadyPaired  = errors.New("whatsapp client is paired but not connected")
	ErrNoPairing      = errors.New("no qr pairing in progress")
	ErrInvalidChatID  = errors.New("invalid chat id")
	ErrNotInitialized = errors.New("whatsapp client is not initialized")
)

// Options configures the session store and the whatsmeow client.
type Options struct {
	StoreDSN      string
	LogLevel      string
	AutoReconnect bool
}

// Client wraps a whatsmeow client and reports its lifecycle as Events.
type Client struct {
	wa  *whatsmeow.Client
	log zerolog.Logger
	qr  *qrBroker

	mu       sync.RWMutex
	state    State
	handlers []func(Event)
}

// New opens the session store and builds the whatsmeow client. It does not
// connect; call Initialize for that.
func New(ctx context.Context, opts Options, log zerolog.Logger) (*Client, error) {
	waLogger := waLog.Stdout("whatsapp", opts.LogLevel, true)

	container, err := sqlstore.New(ctx, "sqlite3", opts.StoreDSN, waLogger.Sub("database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	wa := whatsmeow.NewClient(device, waLogger)
	wa.EnableAutoReconnect = opts.AutoReconnect

	return newClient(wa, log), nil
}

func newClient(wa *whatsmeow.Client, log zerolog.Logger) *Client {
	return &Client{
		wa:    wa,
		log:   log,
		qr:    newQRBroker(),
		state: StateUninitialized,
	}
}

// OnEvent registers fn for every lifecycle event. Handlers run on the
// goroutine that observed the event and must not block.
func (c *Client) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Initialize connects to WhatsApp. Without a stored session it starts the QR
// pairing flow; codes are emitted as EventQR until ctx ends or pairing
// completes.
func (c *Client) Initialize(ctx context.Context) error {
	if c.wa == nil {
		return ErrNotInitialized
	}

	c.wa.AddEventHandler(c.handleEvent)

	if c.wa.Store.ID != nil {
		c.log.Info().Str("jid", c.wa.Store.ID.String()).Msg("Existing session found, connecting")
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	c.qr.reopen()
	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	go func() {
		for item := range qrChan {
			c.handleQRItem(item)
		}
		// No more codes will come from this channel.
		c.qr.fail(ErrNoPairing)
	}()
	return nil
}

// IsReady reports whether the client has an identity and a logged in
// connection.
func (c *Client) IsReady() bool {
	if c.wa == nil || c.wa.Store == nil {
		return false
	}
	return c.wa.Store.ID != nil && c.wa.IsLoggedIn()
}

// SendMessage sends text to chatID once.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if !c.IsReady() {
		return ErrNotReady
	}

	jid, err := ChatIDToJID(chatID)
	if err != nil {
		return err
	}

	_, err = c.wa.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid, err)
	}
	return nil
}

// NextQR blocks until the next QR code is emitted or ctx ends. It fails at
// once when no code can come: the client is connected, it already holds a
// session, or no pairing flow is running.
func (c *Client) NextQR(ctx context.Context) (string, error) {
	if c.IsReady() {
		return "", ErrAlreadyReady
	}
	if c.isPaired() {
		return "", ErrAlreadyPaired
	}
	return c.qr.wait(ctx)
}

func (c *Client) isPaired() bool {
	return c.wa != nil && c.wa.Store != nil && c.wa.Store.ID != nil
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) Close() {
	if c.wa != nil {
		c.wa.Disconnect()
	}
}

func (c *Client) handleQRItem(item whatsmeow.QRChannelItem) {
	switch item.Event {
	case whatsmeow.QRChannelEventCode:
		served := c.qr.publish(item.Code)
		c.log.Debug().Int("waiters", served).Msg("QR code published")
		c.emit(Event{Type: EventQR, Payload: item.Code})
	case whatsmeow.QRChannelSuccess.Event:
		// EventReady follows from the Connected event.
		c.log.Debug().Msg("QR pairing succeeded")
	case whatsmeow.QRChannelTimeout.Event:
		c.emit(Event{Type: EventAuthFailure, Payload: "QR code was not scanned in time"})
	case whatsmeow.QRChannelEventError:
		msg := "pairing failed"
		if item.Error != nil {
			msg = item.Error.Error()
		}
		c.emit(Event{Type: EventAuthFailure, Payload: msg})
	default:
		c.emit(Event{Type: EventAuthFailure, Payload: item.Event})
	}
}

func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		if n := c.qr.fail(ErrAlreadyReady); n > 0 {
			c.log.Debug().Int("waiters", n).Msg("Released QR waiters after login")
		}
		c.emit(Event{Type: EventReady})
	case *events.PairSuccess:
		c.log.Info().Str("jid", v.ID.String()).Str("platform", v.Platform).Msg("Paired with phone")
	case *events.ConnectFailure:
		c.emit(Event{Type: EventAuthFailure, Payload: fmt.Sprintf("%s: %s", v.Reason, v.Message)})
	case *events.ClientOutdated:
		c.emit(Event{Type: EventAuthFailure, Payload: "client outdated"})
	case *events.TemporaryBan:
		c.emit(Event{Type: EventAuthFailure, Payload: v.String()})
	case *events.LoggedOut:
		c.qr.fail(ErrNoPairing)
		c.emit(Event{Type: EventDisconnected, Payload: v.Reason.String()})
	case *events.StreamReplaced:
		c.emit(Event{Type: EventDisconnected, Payload: "stream replaced by another connection"})
	case *events.Disconnected:
		c.emit(Event{Type: EventDisconnected, Payload: "connection closed"})
	default:
		c.log.Trace().Str("event", fmt.Sprintf("%T", evt)).Msg("Unhandled whatsapp event")
	}
}

func (c *Client) emit(evt Event) {
	c.mu.Lock()
	c.state = stateFor(evt.Type)
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(evt)
	}
}
