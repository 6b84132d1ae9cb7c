package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/euserv-reboot/internal/euserv"
	"github.com/HerbHall/euserv-reboot/internal/recovery"
	"github.com/HerbHall/euserv-reboot/internal/testutil"
)

func testReport() *recovery.Report {
	return testutil.NewReport(
		testutil.WithRunID("run-1"),
		testutil.WithFailure(euserv.StepLogin, &euserv.Error{
			Kind:    euserv.KindBusiness,
			Step:    euserv.StepLogin,
			Message: "business error: wrong password",
		}),
	)
}

func TestNotify_DeliversReport(t *testing.T) {
	var received Payload
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		headers = r.Header
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(Config{URL: srv.URL})
	if err := n.Notify(context.Background(), testReport()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if received.Event != "euserv.failed" {
		t.Errorf("event = %q, want euserv.failed", received.Event)
	}
	if received.Source != "euserv-reboot" {
		t.Errorf("source = %q, want euserv-reboot", received.Source)
	}
	if received.Report == nil || received.Report.RunID != "run-1" {
		t.Fatalf("report = %+v, want run-1", received.Report)
	}
	if received.Report.FailedStep != euserv.StepLogin {
		t.Errorf("failed_step = %q, want login", received.Report.FailedStep)
	}
	if n := len(received.Report.Steps); n != 2 {
		t.Fatalf("steps = %d, want 2", n)
	}
	if got := received.Report.Steps[1].Kind; got != euserv.KindBusiness {
		t.Errorf("steps[1].kind = %q, want %q", got, euserv.KindBusiness)
	}
	if _, err := time.Parse(time.RFC3339, received.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", received.Timestamp, err)
	}
	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", headers.Get("Content-Type"))
	}
	if !strings.HasPrefix(headers.Get("User-Agent"), "euserv-reboot/") {
		t.Errorf("User-Agent = %q, want euserv-reboot/ prefix", headers.Get("User-Agent"))
	}
	if headers.Get("X-Signature") != "" {
		t.Error("X-Signature set without a secret")
	}
}

func TestNotify_HMACSignature(t *testing.T) {
	const secret = "test-secret-key"
	var sig string
	var body []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sig = r.Header.Get("X-Signature")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(Config{URL: srv.URL, Secret: secret})
	if err := n.Notify(context.Background(), testReport()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if sig == "" {
		t.Fatal("X-Signature header missing")
	}
	if want := Sign(secret, body); sig != want {
		t.Errorf("X-Signature = %q, want %q", sig, want)
	}
}

func TestNotify_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewNotifier(Config{URL: srv.URL}).Notify(context.Background(), testReport())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %q, want status code", err)
	}
}

func TestNotify_Unreachable(t *testing.T) {
	err := NewNotifier(Config{URL: "http://127.0.0.1:1", Timeout: 2 * time.Second}).Notify(context.Background(), testReport())
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
}

func TestNewNotifier_DefaultTimeout(t *testing.T) {
	n := NewNotifier(Config{URL: "http://example.com"})
	if n.client.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", n.client.Timeout, DefaultTimeout)
	}
}
