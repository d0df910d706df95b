// Package knowledge provides lookups over the static knowledge base corpus.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	afsurl "github.com/viant/afs/url"
)

const logPrefix = "[knowledge]"

// NoTitles is the single title reported for an empty corpus.
const NoTitles = "No titles found."

// Entry is one knowledge base article.
type Entry struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type corpus struct {
	Entries []Entry `json:"entries"`
}

// Index answers title queries over the corpus stored at a location. The
// corpus is loaded on first use and kept for the life of the index; a failed
// load is retried on the next call.
type Index struct {
	location string
	fs       afs.Service

	mu      sync.Mutex
	entries []Entry
	loaded  bool
}

// New creates an index over the corpus at location, which may be a local
// path or any URL afs understands (file://, mem://, gs://, s3://).
func New(location string) *Index {
	return &Index{location: location, fs: afs.New()}
}

// ListTitles returns every title in corpus order. An empty corpus yields
// []string{NoTitles}; an unreadable one yields an empty slice.
func (i *Index) ListTitles(ctx context.Context) []string {
	entries, err := i.load(ctx)
	if err != nil {
		log.Printf("%s error loading knowledge base: %v", logPrefix, err)
		return []string{}
	}
	if len(entries) == 0 {
		return []string{NoTitles}
	}
	titles := make([]string, 0, len(entries))
	for _, entry := range entries {
		titles = append(titles, entry.Title)
	}
	return titles
}

// Find returns the entries whose title occurs in any of the queries,
// compared case-insensitively. Each entry is returned at most once, in
// corpus order. Queries naming no known title contribute nothing.
func (i *Index) Find(ctx context.Context, queries ...string) []Entry {
	entries, err := i.load(ctx)
	if err != nil {
		log.Printf("%s error searching knowledge base: %v", logPrefix, err)
		return []Entry{}
	}

	normalized := make([]string, 0, len(queries))
	for _, q := range queries {
		if q = normalize(q); q != "" {
			normalized = append(normalized, q)
		}
	}

	matched := []Entry{}
	for _, entry := range entries {
		title := normalize(entry.Title)
		if title == "" {
			continue
		}
		for _, q := range normalized {
			if strings.Contains(q, title) {
				matched = append(matched, entry)
				break
			}
		}
	}
	log.Printf("%s %d queries matched %d entries", logPrefix, len(normalized), len(matched))
	return matched
}

func (i *Index) load(ctx context.Context) ([]Entry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.loaded {
		return i.entries, nil
	}

	URL := i.location
	if afsurl.Scheme(URL, "") == "" {
		abs, err := filepath.Abs(URL)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", URL, err)
		}
		URL = "file://" + abs
	}

	data, err := i.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("knowledge base file not found at %s: %w", i.location, err)
	}

	var c corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid JSON format in knowledge base file: %w", err)
	}
	for idx := range c.Entries {
		c.Entries[idx].Detail = normalizeDetail(c.Entries[idx].Detail)
	}

	i.entries = c.Entries
	i.loaded = true
	log.Printf("%s loaded %d entries from %s", logPrefix, len(c.Entries), URL)
	return i.entries, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
