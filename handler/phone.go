package handler

import "regexp"

// ChatSuffix is appended to a cleaned phone number to address a person.
const ChatSuffix = "@c.us"

var nonDialable = regexp.MustCompile(`[^\d+]`)

// NormalizePhoneNumber keeps only digits and plus signs and appends
// ChatSuffix. The number itself is not validated; a malformed number yields a
// malformed chat id and the failure surfaces when sending.
func NormalizePhoneNumber(phone string) string {
	return nonDialable.ReplaceAllString(phone, "") + ChatSuffix
}
