// Package webhook posts recovery run reports to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HerbHall/euserv-reboot/internal/recovery"
	"github.com/HerbHall/euserv-reboot/internal/version"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 10 * time.Second

// Compile-time interface guard.
var _ recovery.Notifier = (*Notifier)(nil)

// Config holds the webhook settings.
type Config struct {
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"` // HMAC-SHA256 key for X-Signature ("" = unsigned)
	Timeout time.Duration `mapstructure:"timeout"`
}

// Payload is the JSON body sent to the webhook URL.
type Payload struct {
	Event     string           `json:"event"`
	Source    string           `json:"source"`
	Timestamp string           `json:"timestamp"`
	Report    *recovery.Report `json:"report"`
}

// Notifier delivers run reports via HTTP POST.
type Notifier struct {
	client *http.Client
	cfg    Config
}

// NewNotifier creates a webhook notifier.
func NewNotifier(cfg Config) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Notifier{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Notify sends report to the configured URL. The event name is
// "euserv.<outcome>", e.g. "euserv.reset_triggered".
func (n *Notifier) Notify(ctx context.Context, report *recovery.Report) error {
	payload := Payload{
		Event:     "euserv." + string(report.Outcome),
		Source:    "euserv-reboot",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Report:    report,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "euserv-reboot/"+version.Short())

	if n.cfg.Secret != "" {
		req.Header.Set("X-Signature", Sign(n.cfg.Secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook POST %s: %w", n.cfg.URL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook POST %s: status %d", n.cfg.URL, resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
