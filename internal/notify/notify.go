package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Intent is a request to deliver a human-readable message to a worker, a
// whole squad, or the admin group. The engine only produces intents; the
// operator-facing service resolves recipients and performs delivery.
type Intent struct {
	WorkerID int64  `json:"worker_id,omitempty"`
	SquadID  int64  `json:"squad_id,omitempty"`
	Admins   bool   `json:"admins,omitempty"`
	Text     string `json:"text"`
}

func ToWorker(workerID int64, text string) Intent {
	return Intent{WorkerID: workerID, Text: text}
}

func ToSquad(squadID int64, text string) Intent {
	return Intent{SquadID: squadID, Text: text}
}

func ToAdmins(text string) Intent {
	return Intent{Admins: true, Text: text}
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send delivers each intent at-least-once, best-effort. A failure for one
// recipient is logged and never blocks the rest, and never reaches the
// caller; state changes must not roll back because a message was lost.
func (c *Client) Send(ctx context.Context, intents []Intent) {
	for _, intent := range intents {
		if err := c.send(ctx, intent); err != nil {
			log.Printf("Failed to deliver notification %q: %v", intent.Text, err)
		}
	}
}

func (c *Client) send(ctx context.Context, intent Intent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notifications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
