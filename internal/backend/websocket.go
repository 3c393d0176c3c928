package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

// response is the message a generator server sends back for each request.
type response struct {
	Frames []pose.Node `json:"frames"`
	Path   []math.Vec3 `json:"path"`
	Error  string      `json:"error,omitempty"`
}

// Client is a Generator that forwards requests to a remote generator over
// a WebSocket connection, one connection per request.
type Client struct {
	URL     string
	Timeout time.Duration
	Dialer  *websocket.Dialer // nil uses websocket.DefaultDialer
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, md ModelData) (*pose.Sequence, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.URL, err)
	}
	defer conn.Close()

	// Closing the connection unblocks the read below on cancel or timeout
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(md); err != nil {
		return nil, fmt.Errorf("sending request: %w", orCtx(ctx, err))
	}

	var resp response
	if err := conn.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("reading response: %w", orCtx(ctx, err))
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return &pose.Sequence{Frames: resp.Frames, Path: resp.Path}, nil
}

// orCtx prefers the context error when the context is done, since a
// cancelled request surfaces as a closed-connection error otherwise.
func orCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Handler serves gen over WebSocket. Each text message on a connection is
// a ModelData request answered by one response message.
func Handler(gen Generator, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		for {
			var md ModelData
			if err := conn.ReadJSON(&md); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("connection closed", zap.Error(err))
				}
				return
			}

			log.Debug("generate request",
				zap.String("skeleton", md.Skeleton.Name),
				zap.Int("points", len(md.Path)),
				zap.Int("frames", md.FrameCount))

			var resp response
			seq, err := gen.Generate(r.Context(), md)
			if err != nil {
				log.Warn("generation failed", zap.Error(err))
				resp.Error = err.Error()
			} else {
				resp.Frames = seq.Frames
				resp.Path = seq.Path
			}
			if err := conn.WriteJSON(resp); err != nil {
				log.Debug("write response failed", zap.Error(err))
				return
			}
		}
	})
}
