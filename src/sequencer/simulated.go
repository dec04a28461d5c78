package sequencer

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"time"
)

// simulate yields content after delay unless ctx ends first.
func simulate(ctx context.Context, delay time.Duration, content string) (string, error) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return content, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func jsonpContent() string {
	return "<html><body><h1>Content loaded via JSONP</h1><p>This is a demo of JSONP proxy method.</p></body></html>"
}

func base64Content(target string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(target))
	return fmt.Sprintf("<html><body><h1>Base64 Proxy Demo</h1><p>URL: %s</p><p>Encoded: %s</p></body></html>",
		html.EscapeString(target), encoded)
}

func dataURIContent(target string) string {
	page := fmt.Sprintf("<html><body><h1>Data URI Proxy Demo</h1><p>Original URL: %s</p><p>This method embeds content as data URI.</p></body></html>",
		html.EscapeString(target))
	return fmt.Sprintf(`<iframe src="data:text/html,%s" width="100%%" height="400"></iframe>`, html.EscapeString(page))
}
