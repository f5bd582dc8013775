package httpapi

import "context"

// serverBaseCtx is cancelled on shutdown so long-lived streams end with a
// final status line instead of a dropped connection.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by stream handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context derived from req that is also cancelled when
// base is done. The cancel func must be called when the handler ends.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
