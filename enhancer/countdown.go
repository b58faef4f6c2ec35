package enhancer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// ExpiredText is shown once the expiration has passed.
const ExpiredText = "(Expired)"

// minutesThreshold is the largest remaining time still shown in seconds.
const minutesThreshold = 120

var expirationLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseExpiration parses the text of an expiration element. Layouts without
// a zone are read as local time, except a bare date which is UTC.
func ParseExpiration(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty expiration")
	}
	for _, layout := range expirationLayouts {
		loc := time.Local
		if layout == "2006-01-02" {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration %q", text)
}

// SecondsLeft returns the remaining time rounded up to whole seconds.
func SecondsLeft(expiration, now time.Time) int64 {
	return int64(math.Ceil(expiration.Sub(now).Seconds()))
}

// FormatRemaining renders a remaining-seconds value for display.
func FormatRemaining(seconds int64) string {
	switch {
	case seconds < 0:
		return ExpiredText
	case seconds > minutesThreshold:
		return fmt.Sprintf("(%d minutes left)", (seconds+59)/60)
	default:
		return fmt.Sprintf("(%d seconds left)", seconds)
	}
}

// Countdown rewrites a text sink with the time left until an expiration,
// once immediately and then on every tick, until stopped.
type Countdown struct {
	expiration time.Time
	sink       TextSink
	now        func() time.Time
	interval   time.Duration

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu   sync.Mutex
	text string
}

func newCountdown(expiration time.Time, sink TextSink, now func() time.Time, interval time.Duration) *Countdown {
	return &Countdown{
		expiration: expiration,
		sink:       sink,
		now:        now,
		interval:   interval,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Update renders the current remaining time into the sink and returns it.
func (c *Countdown) Update() string {
	text := FormatRemaining(SecondsLeft(c.expiration, c.now()))
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	c.sink.SetText(text)
	return text
}

// Text returns the last rendered text.
func (c *Countdown) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Expiration returns the parsed expiration the countdown runs toward.
func (c *Countdown) Expiration() time.Time {
	return c.expiration
}

// Stop ends the ticker loop. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// Done is closed after the loop has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) start(ctx context.Context) {
	c.Update()
	go c.run(ctx)
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Update()
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
