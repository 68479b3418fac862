package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"shopscout/searchservice/internal/metrics"
)

const cacheTTL = time.Hour

// FileCache stores completions on disk keyed by prompt hash so identical
// normalization prompts are answered without another model call.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) *FileCache {
	if dir == "" {
		return nil
	}
	return &FileCache{dir: dir}
}

type cacheEntry struct {
	Timestamp float64 `json:"_ts"`
	Response  string  `json:"resp"`
}

func (c *FileCache) path(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached completion for the prompt. Expired entries are
// removed on read.
func (c *FileCache) Get(prompt string) (string, bool) {
	if c == nil {
		return "", false
	}
	data, err := os.ReadFile(c.path(prompt))
	if err != nil {
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if time.Since(time.Unix(int64(entry.Timestamp), 0)) > cacheTTL {
		_ = os.Remove(c.path(prompt))
		return "", false
	}
	metrics.LLMCacheHitsTotal.Inc()
	return entry.Response, true
}

func (c *FileCache) Put(prompt, response string) {
	if c == nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	data, err := json.Marshal(cacheEntry{
		Timestamp: float64(time.Now().Unix()),
		Response:  response,
	})
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path(prompt), data, 0o644)
}
