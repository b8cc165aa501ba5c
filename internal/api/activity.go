package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const streamWriteTimeout = 5 * time.Second

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.Recent(recentActivityLimit))
}

// handleActivityStream pushes every new activity event to a websocket client
// until either side goes away.
func (h *Handler) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	// The server write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.corsOrigins),
	})
	if err != nil {
		logger(r).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	events, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	// Clients never send; CloseRead handles control frames and cancels on close.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(wctx, conn, event)
			cancel()
			if err != nil {
				logger(r).Debug("activity stream write failed", "error", err)
				return
			}
		}
	}
}

// originPatterns converts CORS origins ("https://app.example.com") into the
// host patterns websocket.Accept expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		patterns = append(patterns, o)
	}
	return patterns
}
