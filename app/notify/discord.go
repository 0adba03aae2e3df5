package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lysyi3m/catalog-watch/app/catalog"
)

const maxErrorBody = 1024

type Notifier struct {
	webhookURL string
	baseURL    string
	maxItems   int
	httpClient *http.Client
}

func NewNotifier(webhookURL, baseURL string, maxItems int, httpClient *http.Client) *Notifier {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Notifier{
		webhookURL: webhookURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxItems:   maxItems,
		httpClient: httpClient,
	}
}

// Notify posts one embed describing the change. Nothing is sent when both
// lists are empty.
func (n *Notifier) Notify(ctx context.Context, added, removed []string, changeID string) error {
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	payload := Payload{
		Embeds: []Embed{{
			Title:       EmbedTitle,
			Description: n.BuildMessage(added, removed, changeID),
			Color:       EmbedColor,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	slog.Debug("Notification delivered", "change_id", changeID, "status", resp.StatusCode)
	return nil
}

// BuildMessage renders the embed description: a link to the change page,
// then one section per non-empty list, each capped at maxItems entries.
func (n *Notifier) BuildMessage(added, removed []string, changeID string) string {
	lines := []string{
		fmt.Sprintf("[🔗 View all changes](%s/change/%s)\n", n.baseURL, changeID),
	}

	if len(added) > 0 {
		lines = n.appendSection(lines, "🟢 **New Products:**", added)
		lines = append(lines, "")
	}

	if len(removed) > 0 {
		lines = n.appendSection(lines, "🔴 **Removed Products:**", removed)
	}

	return strings.Join(lines, "\n")
}

func (n *Notifier) appendSection(lines []string, header string, products []string) []string {
	lines = append(lines, header)

	for i, product := range products {
		if i == n.maxItems {
			break
		}
		lines = append(lines, fmt.Sprintf("[%s](%s)", catalog.DisplayName(product), product))
	}

	if remaining := len(products) - n.maxItems; remaining > 0 {
		lines = append(lines, fmt.Sprintf("+%d more...", remaining))
	}

	return lines
}
