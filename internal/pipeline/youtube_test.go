package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkorsak/veracity/internal/model"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url extra params", "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ&list=PL1", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"mobile url", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"whitespace", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", false},
		{"garbage", "not a video", "", true},
		{"too short id", "abc123", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT4M13S", 253, false},
		{"PT1H2M3S", 3723, false},
		{"PT45S", 45, false},
		{"PT1H", 3600, false},
		{"PT0S", 0, false},
		{"4M13S", 0, true},
		{"PT", 0, false}, // zero-length live placeholder
		{"", 0, true},
		{"P1DT1H", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseISODuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseISODuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseISODuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func testHTTPConfig() (model.HTTPConfig, model.ConcurrencyConfig) {
	return model.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test-agent",
		}, model.ConcurrencyConfig{
			RequestsPerSecond: 100,
			Burst:             10,
		}
}

func TestYouTubeTranscriptSource_FetchTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("v"); got != "dQw4w9WgXcQ" {
			t.Errorf("v = %q, want the video ID", got)
		}
		if got := r.URL.Query().Get("lang"); got != "en" {
			t.Errorf("lang = %q, want en", got)
		}
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.08" dur="3.2">never gonna give you up</text>
  <text start="65.4" dur="2.9">never gonna let you &amp; down</text>
  <text start="70.1" dur="1.0">   </text>
</transcript>`))
	}))
	defer server.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeTranscriptSource{
		fetch:   newFetchClient(httpCfg, ccCfg),
		lang:    "en",
		baseURL: server.URL,
	}

	tr, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchTranscript failed: %v", err)
	}

	if !tr.IsReal {
		t.Error("expected a real transcript")
	}
	lines := strings.Split(tr.Text, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (blank cue dropped): %q", len(lines), tr.Text)
	}
	if lines[0] != "[00:00] never gonna give you up" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "[01:05] never gonna let you & down" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestYouTubeTranscriptSource_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// timedtext answers 200 with an empty body when no track exists
	}))
	defer server.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeTranscriptSource{
		fetch:   newFetchClient(httpCfg, ccCfg),
		lang:    "en",
		baseURL: server.URL,
	}

	tr, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchTranscript failed: %v", err)
	}
	if tr.IsReal {
		t.Error("empty track should yield a placeholder transcript")
	}
	if tr.Text == "" {
		t.Error("placeholder transcript should not be empty")
	}
}

func TestYouTubeTranscriptSource_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeTranscriptSource{
		fetch:   newFetchClient(httpCfg, ccCfg),
		lang:    "en",
		baseURL: server.URL,
	}

	if _, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
}

func TestYouTubeMetadataSource_WithDataAPI(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Never Gonna Give You Up"}`))
	}))
	defer oembed.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		w.Write([]byte(`{"items": [{"contentDetails": {"duration": "PT3M33S"}}]}`))
	}))
	defer api.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeMetadataSource{
		fetch:      newFetchClient(httpCfg, ccCfg),
		apiKey:     "test-key",
		oembedBase: oembed.URL,
		apiBase:    api.URL,
	}

	meta, err := source.FetchMetadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if meta.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Duration != 213 {
		t.Errorf("Duration = %d, want 213", meta.Duration)
	}
}

func TestYouTubeMetadataSource_ScrapeFallback(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Scraped"}`))
	}))
	defer oembed.Close()

	watch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta itemprop="duration" content="PT10M"></head><body></body></html>`))
	}))
	defer watch.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeMetadataSource{
		fetch:      newFetchClient(httpCfg, ccCfg),
		oembedBase: oembed.URL,
		watchBase:  watch.URL,
	}

	meta, err := source.FetchMetadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if meta.Title != "Scraped" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Duration != 600 {
		t.Errorf("Duration = %d, want 600", meta.Duration)
	}
}

func TestYouTubeMetadataSource_OEmbedErrorPropagates(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer oembed.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeMetadataSource{
		fetch:      newFetchClient(httpCfg, ccCfg),
		oembedBase: oembed.URL,
	}

	if _, err := source.FetchMetadata(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected oembed failure to propagate")
	}
}

func TestYouTubeMetadataSource_UnknownDurationIsZero(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "No Duration"}`))
	}))
	defer oembed.Close()

	watch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer watch.Close()

	httpCfg, ccCfg := testHTTPConfig()
	source := &YouTubeMetadataSource{
		fetch:      newFetchClient(httpCfg, ccCfg),
		oembedBase: oembed.URL,
		watchBase:  watch.URL,
	}

	meta, err := source.FetchMetadata(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if meta.Duration != 0 {
		t.Errorf("Duration = %d, want 0", meta.Duration)
	}
}
