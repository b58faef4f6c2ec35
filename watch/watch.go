// Package watch follows an env page from the terminal. It fetches the page,
// runs the enhancer against the parsed markup and prints what a browser
// would show: the bottom of the log pane and the expiration countdown.
package watch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ghiac/ephdash/dom"
	"github.com/ghiac/ephdash/enhancer"
	"github.com/ghiac/ephdash/log"
)

// DefaultTail is how many log lines are printed
const DefaultTail = 20

// Options configures a Watcher
type Options struct {
	// URL of the dashboard page
	URL string

	// Selector overrides; a non-empty value is selected and its change
	// handler fired before watching
	Repo   string
	Branch string
	Path   string

	// Tail is how many log lines to print (default: 20)
	Tail int

	// Cookies are sent with every request, e.g. an auth proxy session
	Cookies []*http.Cookie

	Client   *http.Client
	Out      io.Writer
	Clock    func() time.Time
	Interval time.Duration
}

// Report summarizes one Run
type Report struct {
	// URL is the page that was finally watched
	URL string
	// Logs are the printed log lines
	Logs []string
	// Countdown holds every countdown text printed, in order
	Countdown []string
}

// Watcher prints an env page's logs and countdown
type Watcher struct {
	opts     Options
	enhancer *enhancer.Enhancer
}

// New creates a Watcher
func New(opts Options) (*Watcher, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("page URL is required")
	}
	if opts.Tail <= 0 {
		opts.Tail = DefaultTail
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var enhancerOpts []enhancer.Option
	if opts.Clock != nil {
		enhancerOpts = append(enhancerOpts, enhancer.WithClock(opts.Clock))
	}
	if opts.Interval > 0 {
		enhancerOpts = append(enhancerOpts, enhancer.WithInterval(opts.Interval))
	}

	return &Watcher{
		opts:     opts,
		enhancer: enhancer.New(enhancerOpts...),
	}, nil
}

// Run watches the page until its countdown expires or ctx is cancelled.
// Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) (*Report, error) {
	doc, loc, err := w.navigate(ctx, w.opts.URL)
	if err != nil {
		return nil, err
	}

	report := &Report{URL: loc.String()}

	if w.opts.Repo != "" {
		if doc, loc, err = w.change(ctx, doc, loc, false); err != nil {
			return report, err
		}
	}
	if w.opts.Branch != "" || w.opts.Path != "" {
		if doc, loc, err = w.change(ctx, doc, loc, true); err != nil {
			return report, err
		}
	}
	report.URL = loc.String()

	page := doc.Page(loc)
	sink := newNotifySink(page.Countdown)
	if sink != nil {
		page.Countdown = sink
	}

	session := w.enhancer.Load(ctx, page)
	defer session.Teardown()

	if pane := doc.QuerySelector("." + enhancer.ClassLogPane); pane != nil {
		report.Logs = pane.Visible(w.opts.Tail)
		for _, line := range report.Logs {
			fmt.Fprintln(w.opts.Out, line)
		}
	}

	if session.Countdown() == nil {
		log.Log.Infof("[Watch] No expiration on %s", report.URL)
		return report, nil
	}

	log.Log.Infof("[Watch] ⏳ Watching %s | Expires: %s", report.URL, session.Countdown().Expiration().Format(time.RFC3339))
	last := ""
	for {
		select {
		case <-ctx.Done():
			log.Log.Infof("[Watch] 🛑 Stopped watching %s", report.URL)
			return report, nil
		case <-sink.changed:
		}

		text := sink.latest()
		if text == last {
			continue
		}
		last = text
		report.Countdown = append(report.Countdown, text)
		fmt.Fprintln(w.opts.Out, text)

		if text == enhancer.ExpiredText {
			return report, nil
		}
	}
}

// change applies the selector overrides and fires the matching handler,
// then fetches the page the handler navigated to
func (w *Watcher) change(ctx context.Context, doc *dom.Document, loc *dom.Location, branch bool) (*dom.Document, *dom.Location, error) {
	overrides := map[string]string{enhancer.IDRepo: w.opts.Repo}
	if branch {
		overrides = map[string]string{enhancer.IDBranch: w.opts.Branch, enhancer.IDPath: w.opts.Path}
	}
	for id, value := range overrides {
		if value == "" {
			continue
		}
		el := doc.QuerySelector("#" + id)
		if el == nil {
			return nil, nil, fmt.Errorf("page has no %s selector", id)
		}
		if err := el.SetValue(value); err != nil {
			return nil, nil, err
		}
	}

	page := doc.Page(loc)
	var navigated bool
	if branch {
		navigated = w.enhancer.BranchChanged(page)
	} else {
		navigated = w.enhancer.RepoChanged(page)
	}
	if !navigated {
		return nil, nil, fmt.Errorf("page did not navigate after selector change")
	}
	return w.navigate(ctx, loc.String())
}

// navigate fetches and parses a page
func (w *Watcher) navigate(ctx context.Context, rawURL string) (*dom.Document, *dom.Location, error) {
	loc, err := dom.NewLocation(rawURL)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for _, c := range w.opts.Cookies {
		req.AddCookie(c)
	}

	log.Log.Debugf("[Watch] GET %s", rawURL)
	resp, err := w.opts.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("fetching %s: status %d: %s", rawURL, resp.StatusCode, body)
	}

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return doc, loc, nil
}

// notifySink forwards countdown text to the page and signals each write.
// Only the latest text is kept.
type notifySink struct {
	next    enhancer.TextSink
	changed chan struct{}

	mu   sync.Mutex
	text string
}

func newNotifySink(next enhancer.TextSink) *notifySink {
	if next == nil {
		return nil
	}
	return &notifySink{next: next, changed: make(chan struct{}, 1)}
}

func (s *notifySink) SetText(text string) {
	s.next.SetText(text)

	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *notifySink) latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}
