package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultCacheDir = ".waxlint/cache"
	engineVersion   = "0.1.0"
)

// Cache provides content-addressed caching of lint service results.
type Cache struct {
	Dir     string
	Enabled bool
	MaxAge  time.Duration // 0 keeps entries forever
}

// cacheEntry stores the findings for one normalized markup.
type cacheEntry struct {
	Findings []Finding `json:"findings"`
}

// ResolveCacheDir returns dir if absolute, dir joined to rootDir if
// relative, or the default location under rootDir if empty.
func ResolveCacheDir(rootDir, dir string) string {
	if dir == "" {
		return filepath.Join(rootDir, defaultCacheDir)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(rootDir, dir)
}

// Key computes a cache key from the normalized markup and the request scope
// (endpoint, rules).
func (c *Cache) Key(markup string, scope string) string {
	h := sha256.New()
	h.Write([]byte(markup))
	h.Write([]byte{0})
	h.Write([]byte(scope))
	h.Write([]byte(engineVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves cached findings. Entries older than maxAge are misses;
// maxAge 0 disables expiry.
func (c *Cache) Get(key string, maxAge time.Duration) ([]Finding, bool) {
	if !c.Enabled {
		return nil, false
	}

	path := c.path(key)
	if maxAge > 0 {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) > maxAge {
			return nil, false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	return entry.Findings, true
}

// Put stores findings in the cache.
func (c *Cache) Put(key string, findings []Finding) error {
	if !c.Enabled {
		return nil
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	if findings == nil {
		findings = []Finding{}
	}
	data, err := json.Marshal(cacheEntry{Findings: findings})
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Clear removes the entire cache directory.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.Dir)
}

// path returns the filesystem path for a cache key.
// Uses 2-char prefix subdirectory to avoid huge flat directories.
func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".json")
}

// EnsureGitignore adds .waxlint/ to .gitignore if not already present.
func EnsureGitignore(rootDir string) {
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	entry := ".waxlint/"

	data, err := os.ReadFile(gitignorePath)
	if err == nil {
		for _, line := range splitLines(data) {
			if line == entry {
				return
			}
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return // best effort
	}
	defer f.Close()

	if len(data) > 0 && data[len(data)-1] != '\n' {
		f.WriteString("\n")
	}
	f.WriteString(entry + "\n")
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			line := string(data[start:i])
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
