package whatsapp

// EventType names a lifecycle event emitted by the Client.
type EventType string

const (
	EventQR           EventType = "qr"
	EventReady        EventType = "ready"
	EventAuthFailure  EventType = "auth_failure"
	EventDisconnected EventType = "disconnected"
)

// Event is a lifecycle notification. Payload carries the QR code for EventQR
// and the failure message or disconnect reason for the failure events.
type Event struct {
	Type    EventType
	Payload string
}

// State is the last lifecycle state the Client observed.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateQRPending     State = "qr_pending"
	StateReady         State = "ready"
	StateAuthFailure   State = "auth_failure"
	StateDisconnected  State = "disconnected"
)

func stateFor(t EventType) State {
	switch t {
	case EventQR:
		return StateQRPending
	case EventReady:
		return StateReady
	case EventAuthFailure:
		return StateAuthFailure
	case EventDisconnected:
		return StateDisconnected
	default:
		return StateUninitialized
	}
}
