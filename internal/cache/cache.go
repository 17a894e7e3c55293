// Package cache stores fetched transcripts and finished analysis reports so
// repeated requests for the same video skip transcript fetches and model
// calls. Persistence of reports beyond this cache is someone else's job.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// TranscriptKey builds the cache key for a video's transcript.
func TranscriptKey(videoID string) string {
	return buildKey("transcript", videoID)
}

// ReportKey builds the cache key for a video's finished analysis report.
func ReportKey(videoID string) string {
	return buildKey("report", videoID)
}

func buildKey(kind, videoID string) string {
	hash := sha256.Sum256([]byte(videoID))
	return "veracity:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
