package whatsapp

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// ChatIDToJID converts a chat identifier such as "+14155550100@c.us" into the
// JID whatsmeow sends to. The legacy c.us server maps to s.whatsapp.net and a
// leading plus is dropped from the user part.
func ChatIDToJID(chatID string) (types.JID, error) {
	user, server, ok := strings.Cut(chatID, "@")
	if !ok {
		return types.JID{}, fmt.Errorf("%w: %q has no server part", ErrInvalidChatID, chatID)
	}

	user = strings.TrimPrefix(user, "+")
	if user == "" {
		return types.JID{}, fmt.Errorf("%w: %q has no user part", ErrInvalidChatID, chatID)
	}

	switch server {
	case types.LegacyUserServer, types.DefaultUserServer:
		return types.NewJID(user, types.DefaultUserServer), nil
	case types.GroupServer:
		return types.NewJID(user, types.GroupServer), nil
	default:
		return types.JID{}, fmt.Errorf("%w: unsupported server %q", ErrInvalidChatID, server)
	}
}
