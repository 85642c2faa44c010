package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>%[1]s</title>
  <meta property="og:title" content="%[1]s">
</head>
<body>
  <article>
    <h1>%[1]s</h1>
    <p>Given an m x n grid of integers, return the length of the longest strictly increasing path.
    From each cell you can move in four directions: left, right, up, or down. You may not move
    diagonally or move outside the boundary, and wrap-around is not allowed either.</p>
    <p>Example one walks through a small matrix and explains why the answer is four, tracing the path
    one cell at a time so the reader can verify each step of the increasing sequence by hand.</p>
    <p>Constraints list the matrix dimensions and the value range of each cell in the grid.</p>
  </article>
</body>
</html>`

func newTestFetcher() *HTTPFetcher {
	f := NewHTTPFetcher(5 * time.Second)
	f.backoff = time.Millisecond
	return f
}

func TestFetchTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, pageTemplate, "Longest Increasing Path In A Matrix")
	}))
	defer srv.Close()

	title, err := newTestFetcher().FetchTitle(context.Background(), srv.URL+"/problems/longest-path/")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if title != "Longest Increasing Path In A Matrix" {
		t.Errorf("title = %q", title)
	}
}

func TestFetchTitle_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, pageTemplate, "Longest Increasing Path In A Matrix")
	}))
	defer srv.Close()

	if _, err := newTestFetcher().FetchTitle(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}

func TestFetchTitle_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher().FetchTitle(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("err = %v, want HTTP 404", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestFetchTitle_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestFetcher().FetchTitle(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != maxRetries {
		t.Errorf("hits = %d, want %d", hits.Load(), maxRetries)
	}
}

func TestFetchTitle_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().FetchTitle(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Two Sum - LeetCode", "Two Sum"},
		{"  Two   Sum | LeetCode ", "Two Sum"},
		{"Graph Valid Tree", "Graph Valid Tree"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
