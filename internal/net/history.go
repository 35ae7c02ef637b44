package net

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SketchRoom/internal/state"
)

// HistoryResponse is the body of GET /chats/{roomId}.
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

type HistoryMessage struct {
	Message string `json:"message"`
}

// HistoryClient reads a room's committed shapes from the history endpoint.
type HistoryClient struct {
	BaseURL string
	HTTP    *http.Client
	// NewestFirst is set when the endpoint lists the latest message first.
	NewestFirst bool
}

func NewHistoryClient(baseURL string, newestFirst bool) *HistoryClient {
	return &HistoryClient{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		HTTP:        &http.Client{Timeout: 10 * time.Second},
		NewestFirst: newestFirst,
	}
}

// Fetch returns the room's entries oldest first. Entries that fail to parse
// are skipped.
func (h *HistoryClient) Fetch(ctx context.Context, roomID string) ([]state.Entry, error) {
	endpoint := fmt.Sprintf("%s/chats/%s", h.BaseURL, url.PathEscape(roomID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	resp, err := h.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch history: unexpected status %s", resp.Status)
	}

	var body HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	entries := make([]state.Entry, 0, len(body.Messages))
	for i, m := range body.Messages {
		e, _, err := DecodePayload(m.Message)
		if err != nil {
			log.Printf("[SYNC] Skipping history entry %d: %v", i, err)
			continue
		}
		entries = append(entries, e)
	}
	if h.NewestFirst {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}
