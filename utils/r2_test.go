package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestR2Client_PutObject(t *testing.T) {
	var (
		method      string
		path        string
		contentType string
		body        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewR2Client(context.Background(), R2Config{
		AccountID:       "acct",
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		Bucket:          "archive",
		Endpoint:        srv.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.PutObject(context.Background(), "auth-logs/2026/01/01/a.jsonl", []byte("{}\n"), "application/x-ndjson"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if method != http.MethodPut || path != "/archive/auth-logs/2026/01/01/a.jsonl" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
	if contentType != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if len(body) == 0 {
		t.Fatal("expected a request body")
	}
}

func TestR2Client_PutObjectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	client, err := NewR2Client(context.Background(), R2Config{
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		Bucket:          "archive",
		Endpoint:        srv.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.PutObject(context.Background(), "k", []byte("x"), "text/plain"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	if c := NewHTTPClient(0); c.Timeout <= 0 {
		t.Fatalf("expected a default timeout, got %s", c.Timeout)
	}
}
