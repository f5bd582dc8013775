package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"postured/internal/stream"
	"postured/pkg/types"
)

// teeFlusher mirrors stream lines to a secondary writer without hiding the
// response's Flusher from the encoder.
type teeFlusher struct {
	w   http.ResponseWriter
	tee io.Writer
}

func (t *teeFlusher) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err == nil && t.tee != nil {
		_, _ = t.tee.Write(p)
	}
	return n, err
}

func (t *teeFlusher) Flush() error {
	if f, ok := t.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// streamHandler serves a subscription as newline-delimited events. The body
// carries the same lines the CLI prints; error events do not change the
// HTTP status once streaming has begun.
func streamHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		format := q.Get("format")
		if format == "" {
			format = stream.FormatJSON
		}
		var tee io.Writer
		if requestLogLevel(r) >= LevelDebug {
			tee = &loggingLineWriter{subscriber: q.Get("id")}
		}
		enc, err := stream.NewEncoder(&teeFlusher{w: w, tee: tee}, format)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if format == stream.FormatText {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/x-ndjson")
		}
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		streamClients.WithLabelValues("ndjson").Inc()
		defer streamClients.WithLabelValues("ndjson").Dec()

		run := &stream.Runner{
			Monitor: svc,
			Encoder: enc,
			ID:      q.Get("id"),
			Backoff: svc.Interval(),
			Sink:    eventSink,
			Logger:  zlog,
		}
		code := run.Run(ctx)
		if zlog != nil {
			zlog.Debug().Str("subscriber", q.Get("id")).Int("exit", code).Msg("stream closed")
		}
	}
}

// originAllowed reports whether a WebSocket Origin matches the configured
// CORS origins. A missing Origin header is allowed for non-browser clients.
func originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range corsAllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// wsHandler serves a subscription over a WebSocket, one JSON event per text
// message. The stream ends when the client goes away or the server shuts down.
func wsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		if corsEnabled {
			// nil CheckOrigin keeps gorilla's same-host default
			up.CheckOrigin = originAllowed
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error
			if zlog != nil {
				zlog.Debug().Err(err).Msg("websocket upgrade failed")
			}
			return
		}
		defer conn.Close()

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		streamClients.WithLabelValues("websocket").Inc()
		defer streamClients.WithLabelValues("websocket").Dec()

		// Reads only detect the peer closing; inbound messages are ignored.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		enc := stream.EncoderFunc(func(e types.Event) error {
			b, err := json.Marshal(e)
			if err != nil {
				return err
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return conn.WriteMessage(websocket.TextMessage, b)
		})
		id := r.URL.Query().Get("id")
		run := &stream.Runner{
			Monitor: svc,
			Encoder: enc,
			ID:      id,
			Backoff: svc.Interval(),
			Sink:    eventSink,
			Logger:  zlog,
		}
		code := run.Run(ctx)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if code != stream.ExitOK {
			msg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream ended with error")
		}
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		if zlog != nil {
			zlog.Debug().Str("subscriber", id).Int("exit", code).Msg("websocket closed")
		}
	}
}
