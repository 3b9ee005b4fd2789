package events

import (
	"context"
	"log"
)

// Emit publishes an event to whatever sink the host wired in. The default
// sink drops everything; EnableLogEmitter or SetCustomEmitter replace it.
var Emit = func(ctx context.Context, evt Event) {}

// EnableLogEmitter routes events to the application log.
func EnableLogEmitter() {
	Emit = func(ctx context.Context, evt Event) {
		log.Printf("event %s project=%d job=%s status=%s %s",
			evt.Type, evt.ProjectID, evt.JobID, evt.Status, evt.Message)
	}
}

// SetCustomEmitter installs a caller-provided sink. Passing nil restores the
// no-op default.
func SetCustomEmitter(f func(ctx context.Context, evt Event)) {
	if f == nil {
		Emit = func(context.Context, Event) {}
		return
	}
	Emit = f
}
