package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPushover_Notify(t *testing.T) {
	var gotMessage, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotMessage = r.PostForm.Get("message")
		gotTitle = r.PostForm.Get("title")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewPushoverWithURL("tok", "usr", "LocalAI", server.URL)
	if err := client.Notify(context.Background(), "Error transcribing audio"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotMessage != "Error transcribing audio" || gotTitle != "LocalAI" {
		t.Errorf("got message=%q title=%q", gotMessage, gotTitle)
	}
}

func TestPushover_SkipsWithoutCredentials(t *testing.T) {
	client := NewPushoverWithURL("", "", "LocalAI", "http://127.0.0.1:1")
	if err := client.Notify(context.Background(), "x"); err != nil {
		t.Errorf("expected silent skip, got %v", err)
	}
}

func TestPushover_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewPushoverWithURL("tok", "usr", "LocalAI", server.URL)
	if err := client.Notify(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDesktop_Notify(t *testing.T) {
	d := NewDesktop("LocalAI")

	var calls []string
	d.send = func(title, message string) error {
		calls = append(calls, title+": "+message)
		return nil
	}

	if err := d.Notify(context.Background(), "Error summarizing text"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(calls) != 1 || calls[0] != "LocalAI: Error summarizing text" {
		t.Errorf("calls: %v", calls)
	}

	d.send = func(string, string) error { return errors.New("no dbus") }
	if err := d.Notify(context.Background(), "x"); err == nil {
		t.Error("expected error to be returned")
	}
}

func TestLog_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), "Error transcribing audio"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "Error transcribing audio") {
		t.Errorf("log output: %q", buf.String())
	}
}
