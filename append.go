package imap

import (
	"time"
)

// AppendOptions contains options for the APPEND and REPLACE commands.
type AppendOptions struct {
	Flags []Flag
	// Time is the internal date of the message. The decoder fills it with the
	// current time when the client omits it.
	Time time.Time
}
