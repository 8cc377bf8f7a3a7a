package message

import (
	"fmt"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
)

// AuthorizeView allows only the sender or the recipient to read a message.
// It runs after the message is resolved, since participants are only known
// from the row itself.
func AuthorizeView(requester, from, to string) error {
	if requester == "" || (requester != from && requester != to) {
		return fmt.Errorf("%q viewing message %s->%s: %w", requester, from, to, apperr.ErrForbidden)
	}
	return nil
}

// AuthorizeMarkRead allows only the recipient to mark a message read.
func AuthorizeMarkRead(requester, to string) error {
	if requester == "" || requester != to {
		return fmt.Errorf("%q marking message to %q read: %w", requester, to, apperr.ErrForbidden)
	}
	return nil
}
