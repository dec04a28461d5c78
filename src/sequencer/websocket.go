package sequencer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const wsHandshakeTimeout = 10 * time.Second

type wsFetchRequest struct {
	URL    string `json:"url"`
	Action string `json:"action"`
}

type wsFetchReply struct {
	Content string `json:"content"`
}

// wsRelay asks a WebSocket relay to fetch a page on our behalf.
type wsRelay struct {
	dialer *websocket.Dialer
}

func newWSRelay() *wsRelay {
	return &wsRelay{
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsHandshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  1024,
		},
	}
}

// fetch sends one fetch request and waits for the first reply carrying content.
// Replies without content, or that are not JSON, are skipped.
func (r *wsRelay) fetch(ctx context.Context, relayURL string, target string) (string, error) {
	conn, _, err := r.dialer.DialContext(ctx, relayURL, nil)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// Closing the connection unblocks ReadMessage when the attempt ends
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(wsFetchRequest{URL: target, Action: "fetch"}); err != nil {
		return "", err
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}

		var reply wsFetchReply
		if err := json.Unmarshal(message, &reply); err != nil {
			continue
		}
		if reply.Content != "" {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return reply.Content, nil
		}
	}
}
