package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"taxfiler/internal/config"
	"taxfiler/internal/notifications"
)

type captured struct {
	title, tags, priority, body string
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func serviceFor(topic string, notifySuccess bool) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.NotifySuccess = notifySuccess
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := serviceFor("", true)
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "organize"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "batch with failures",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 3, 1, 2*time.Second)
			},
			expectTitle:    "taxfiler - Batch Needs Attention",
			expectMessage:  "Filed 3, failed 1 (took 2s)",
			expectTags:     "taxfiler,batch,warning",
			expectPriority: "high",
		},
		{
			name: "unclassified",
			send: func(s notifications.Service) error {
				return s.NotifyUnclassified(context.Background(), " random.pdf ")
			},
			expectTitle:   "taxfiler - Unclassified Document",
			expectMessage: "Could not classify random.pdf; it was left in the inbox",
			expectTags:    "taxfiler,unclassified",
		},
		{
			name: "error with context",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("disk full"), "watch")
			},
			expectTitle:    "taxfiler - Error",
			expectMessage:  "watch: disk full",
			expectTags:     "taxfiler,error",
			expectPriority: "high",
		},
		{
			name:          "test",
			send:          func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:   "taxfiler - Test",
			expectMessage: "Notifications are configured",
			expectTags:    "taxfiler,test",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, requests := newServer(t, http.StatusOK)
			if err := tc.send(serviceFor(srv.URL, false)); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := requests()
			if len(got) != 1 {
				t.Fatalf("requests = %d, want 1", len(got))
			}
			req := got[0]
			if req.title != tc.expectTitle || req.body != tc.expectMessage || req.tags != tc.expectTags || req.priority != tc.expectPriority {
				t.Fatalf("request = %+v", req)
			}
		})
	}
}

func TestBatchSuccessIsQuietByDefault(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK)
	if err := serviceFor(srv.URL, false).NotifyBatchCompleted(context.Background(), 2, 0, time.Second); err != nil {
		t.Fatal(err)
	}
	if n := len(requests()); n != 0 {
		t.Fatalf("requests = %d, want 0", n)
	}
	if err := serviceFor(srv.URL, true).NotifyBatchCompleted(context.Background(), 2, 0, time.Second); err != nil {
		t.Fatal(err)
	}
	got := requests()
	if len(got) != 1 || got[0].title != "taxfiler - Batch Complete" {
		t.Fatalf("requests = %+v", got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	err := serviceFor(srv.URL, false).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("err = %v", err)
	}
}
