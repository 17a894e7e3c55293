package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/dkorsak/veracity/internal/model"
	"github.com/dkorsak/veracity/internal/transcript"
	"github.com/dkorsak/veracity/internal/util"
)

const (
	timedtextURL = "https://www.youtube.com/api/timedtext"
	oembedURL    = "https://www.youtube.com/oembed"
	dataAPIURL   = "https://www.googleapis.com/youtube/v3/videos"
	watchURL     = "https://www.youtube.com/watch"
)

var (
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Accepted URL shapes: watch?v=, youtu.be/, embed/, shorts/. Mobile and
	// music hosts reuse the watch path.
	videoURLRes = []*regexp.Regexp{
		regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})`),
	}

	isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
)

// ExtractVideoID accepts a bare 11-character video ID or any common
// YouTube URL form and returns the video ID.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if videoIDRe.MatchString(ref) {
		return ref, nil
	}
	for _, re := range videoURLRes {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("not a recognizable YouTube video reference: %q", ref)
}

// ParseISODuration converts an ISO-8601 duration as returned by the Data
// API (PT1H2M3S) to seconds.
func ParseISODuration(s string) (int, error) {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration: %q", s)
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration: %q", s)
		}
		total += n * mult
	}
	return total, nil
}

// fetchClient wraps an http.Client with a shared rate limit and the
// request headers every YouTube fetch needs.
type fetchClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func newFetchClient(cfg model.HTTPConfig, cc model.ConcurrencyConfig) *fetchClient {
	rps := cc.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cc.Burst
	if burst <= 0 {
		burst = 1
	}
	return &fetchClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		userAgent: cfg.UserAgent,
	}
}

func (f *fetchClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// YouTubeTranscriptSource fetches caption tracks from the timedtext
// endpoint.
type YouTubeTranscriptSource struct {
	fetch   *fetchClient
	lang    string
	baseURL string
}

// NewYouTubeTranscriptSource creates a transcript source from the HTTP and
// concurrency configuration.
func NewYouTubeTranscriptSource(cfg *model.Config) *YouTubeTranscriptSource {
	return &YouTubeTranscriptSource{
		fetch:   newFetchClient(cfg.HTTP, cfg.Concurrency),
		lang:    cfg.YouTube.CaptionLang,
		baseURL: timedtextURL,
	}
}

// FetchTranscript retrieves captions for a video as "[mm:ss] text" lines.
// A video without captions yields a placeholder transcript with IsReal
// false, not an error.
func (s *YouTubeTranscriptSource) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", s.lang)

	body, err := s.fetch.get(ctx, s.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}

	lines := parseTimedtext(body)
	if len(lines) == 0 {
		return &Transcript{
			Text:   "Transcript is not available for this video.",
			IsReal: false,
		}, nil
	}

	return &Transcript{
		Text:   strings.Join(lines, "\n"),
		IsReal: true,
	}, nil
}

// parseTimedtext extracts "[mm:ss] utterance" lines from a timedtext
// document. The html parser tolerates the endpoint's occasional malformed
// markup and unescapes entities for free.
func parseTimedtext(body []byte) []string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "text" {
			if line, ok := timedtextLine(n); ok {
				lines = append(lines, line)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines
}

func timedtextLine(n *html.Node) (string, bool) {
	start := -1
	for _, attr := range n.Attr {
		if attr.Key == "start" {
			if sec, err := strconv.ParseFloat(attr.Val, 64); err == nil {
				start = int(sec)
			}
		}
	}
	if start < 0 {
		return "", false
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	utterance := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
	if utterance == "" {
		return "", false
	}

	return fmt.Sprintf("[%s] %s", transcript.FormatTimestamp(start), utterance), true
}

// YouTubeMetadataSource resolves title and duration. The title comes from
// oEmbed; duration from the Data API when a key is configured, otherwise
// scraped from the watch page.
type YouTubeMetadataSource struct {
	fetch      *fetchClient
	apiKey     string
	oembedBase string
	apiBase    string
	watchBase  string
}

// NewYouTubeMetadataSource creates a metadata source from the HTTP,
// concurrency and YouTube configuration.
func NewYouTubeMetadataSource(cfg *model.Config) *YouTubeMetadataSource {
	return &YouTubeMetadataSource{
		fetch:      newFetchClient(cfg.HTTP, cfg.Concurrency),
		apiKey:     cfg.YouTube.APIKey,
		oembedBase: oembedURL,
		apiBase:    dataAPIURL,
		watchBase:  watchURL,
	}
}

// FetchMetadata returns the video title and duration in seconds. A missing
// title is a hard error; an unknown duration is reported as zero.
func (s *YouTubeMetadataSource) FetchMetadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	title, err := s.fetchTitle(ctx, videoID)
	if err != nil {
		return nil, err
	}

	meta := &VideoMetadata{Title: title}

	if s.apiKey != "" {
		if dur, err := s.fetchAPIDuration(ctx, videoID); err == nil {
			meta.Duration = dur
			return meta, nil
		}
	}

	// Data API unavailable, best effort via the watch page.
	if dur, err := s.scrapeDuration(ctx, videoID); err == nil {
		meta.Duration = dur
	}
	return meta, nil
}

func (s *YouTubeMetadataSource) fetchTitle(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("url", watchURL+"?v="+videoID)
	q.Set("format", "json")

	body, err := s.fetch.get(ctx, s.oembedBase+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("oembed: %w", err)
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("oembed: decode response: %w", err)
	}
	if payload.Title == "" {
		return "", fmt.Errorf("oembed: no title for video %s", videoID)
	}
	return payload.Title, nil
}

func (s *YouTubeMetadataSource) fetchAPIDuration(ctx context.Context, videoID string) (int, error) {
	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", videoID)
	q.Set("key", s.apiKey)

	body, err := s.fetch.get(ctx, s.apiBase+"?"+q.Encode())
	if err != nil {
		return 0, fmt.Errorf("data api: %w", err)
	}

	var payload struct {
		Items []struct {
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("data api: decode response: %w", err)
	}
	if len(payload.Items) == 0 {
		return 0, fmt.Errorf("data api: no items for video %s", videoID)
	}
	return ParseISODuration(payload.Items[0].ContentDetails.Duration)
}

// scrapeDuration pulls the itemprop="duration" meta tag from the watch
// page. Brittle by nature, hence only a fallback.
func (s *YouTubeMetadataSource) scrapeDuration(ctx context.Context, videoID string) (int, error) {
	body, err := s.fetch.get(ctx, s.watchBase+"?v="+videoID)
	if err != nil {
		return 0, fmt.Errorf("watch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return 0, fmt.Errorf("watch page: parse: %w", err)
	}

	content, ok := doc.Find(`meta[itemprop="duration"]`).Attr("content")
	if !ok {
		return 0, fmt.Errorf("watch page: no duration meta tag")
	}
	return ParseISODuration(content)
}
