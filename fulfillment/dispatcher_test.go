package fulfillment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestRoutesEndpointFallback(t *testing.T) {
	routes := Routes{
		DefaultEndpoint: "https://hooks.example.com/default",
		Benefits: map[string]string{
			"supplier_discount": "https://hooks.example.com/suppliers",
		},
	}
	if got := routes.Endpoint("supplier_discount"); got != "https://hooks.example.com/suppliers" {
		t.Fatalf("endpoint = %q", got)
	}
	if got := routes.Endpoint("analytics_access"); got != "https://hooks.example.com/default" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestLoadRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	contents := "default_endpoint: https://hooks.example.com/default\nbenefits:\n  grant_opportunity: https://hooks.example.com/grants\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	routes, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if routes.Endpoint("grant_opportunity") != "https://hooks.example.com/grants" {
		t.Fatalf("unexpected routes %+v", routes)
	}
}

func TestLoadRoutesRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte("benefits: {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRoutes(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDispatcherDeliversSignedPayload(t *testing.T) {
	secret := []byte("test-secret")
	var (
		mu       sync.Mutex
		received []payload
		sigs     []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		mu.Lock()
		received = append(received, p)
		sigs = append(sigs, r.Header.Get("X-Ledger-Signature"))
		mu.Unlock()
		mac := hmac.New(sha256.New, secret)
		mac.Write(body)
		want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
		if got := r.Header.Get("X-Ledger-Signature"); got != want {
			t.Errorf("signature = %q, want %q", got, want)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	dispatcher, err := NewDispatcher(Routes{DefaultEndpoint: server.URL}, secret)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if err := dispatcher.Dispatch(Request{
		Account: "fb-alpha",
		Benefit: "supplier_discount",
		Action:  "apply_supplier_discount",
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		done := len(received) == 1
		mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("delivery not observed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	dispatcher.Close()

	got := received[0]
	if got.Account != "fb-alpha" || got.Benefit != "supplier_discount" || got.Action != "apply_supplier_discount" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.DeliveryID == "" || got.DispatchedAt == "" {
		t.Fatalf("payload missing delivery metadata: %+v", got)
	}
}

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		failing := attempts < 2
		mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher, err := NewDispatcher(
		Routes{DefaultEndpoint: server.URL},
		[]byte("secret"),
		WithRetryPolicy(3, 5*time.Millisecond, 20*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if err := dispatcher.Dispatch(Request{Account: "fb-alpha", Benefit: "analytics_access", Action: "grant_analytics_access"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		done := attempts >= 2
		mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("retry not observed, attempts=%d", attempts)
		}
		time.Sleep(10 * time.Millisecond)
	}
	dispatcher.Close()
}

func TestDispatcherRequiresSecret(t *testing.T) {
	if _, err := NewDispatcher(Routes{DefaultEndpoint: "https://example.com"}, nil); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
