package utils

import (
	"io"
)

// maxDrain bounds how much of an unread body is discarded before closing.
const maxDrain = 64 << 10

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// DrainAndClose discards what is left of a response body (up to 64KiB)
// before closing it, so the underlying connection can be reused.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	Close(body)
}
