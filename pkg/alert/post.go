package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// userAgent identifies kwradar to alert endpoints.
const userAgent = "kwradar/1.0"

func newClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// keywordLines renders the top keywords of n, one line each, with the given
// format taking keyword, volume and growth.
func keywordLines(n *Notification, format string) []string {
	top := n.Top(MessageLimit)
	lines := make([]string, 0, len(top))
	for i := range top {
		kw := &top[i]
		lines = append(lines, fmt.Sprintf(format, kw.Keyword, formatVolume(kw.SearchVolume), Growth(kw)))
	}
	return lines
}

// postJSON marshals payload and POSTs it. sign, when set, may add headers
// computed from the encoded body.
func postJSON(ctx context.Context, client *http.Client, dest, url string, payload any, sign func(*http.Request, []byte)) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", dest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", dest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if sign != nil {
		sign(req, body)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", dest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d", dest, resp.StatusCode)
	}
	return nil
}
