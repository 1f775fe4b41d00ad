package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

func newBufferedLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, &buf
}

func TestPingSuccess(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		hits.Add(1)
	}))
	defer server.Close()

	logger, buf := newBufferedLogger()
	NewNotifier(server.Client(), logger).Ping(context.Background(), server.URL+"/hook?secret=s3cr3t")

	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}
	if !strings.Contains(buf.String(), "notified webhook") {
		t.Fatalf("missing success log: %s", buf.String())
	}
	if strings.Contains(buf.String(), "s3cr3t") {
		t.Fatalf("query string leaked into logs: %s", buf.String())
	}
}

func TestPingErrorResponseIsLogged(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	logger, buf := newBufferedLogger()
	NewNotifier(server.Client(), logger).Ping(context.Background(), server.URL)

	if !strings.Contains(buf.String(), "got error response from webhook") {
		t.Fatalf("missing failure log: %s", buf.String())
	}
}

func TestPingUnreachableAndMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger, buf := newBufferedLogger()
	n := NewNotifier(nil, logger)
	n.Ping(context.Background(), url)
	n.Ping(context.Background(), "not a url")

	if !strings.Contains(buf.String(), "webhook request failed") {
		t.Fatalf("missing transport failure log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "skipping ping") {
		t.Fatalf("missing malformed url log: %s", buf.String())
	}
}
