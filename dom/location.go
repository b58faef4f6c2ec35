package dom

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Location is a page address that records query-string navigations instead
// of performing them.
type Location struct {
	mu          sync.Mutex
	url         *url.URL
	navigations []string
}

// NewLocation parses rawURL into a Location.
func NewLocation(rawURL string) (*Location, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", rawURL, err)
	}
	return &Location{url: u}, nil
}

// Search returns the query string with its leading '?', or "" when empty.
func (l *Location) Search() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.url.RawQuery == "" {
		return ""
	}
	return "?" + l.url.RawQuery
}

// SetSearch replaces the query string and records the resulting URL.
func (l *Location) SetSearch(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.url.RawQuery = strings.TrimPrefix(query, "?")
	l.navigations = append(l.navigations, l.url.String())
}

// String returns the current URL.
func (l *Location) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.url.String()
}

// Navigations returns every URL navigated to, oldest first.
func (l *Location) Navigations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.navigations))
	copy(out, l.navigations)
	return out
}
