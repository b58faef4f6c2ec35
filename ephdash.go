// Package ephdash is a dashboard for per-user ephemeral environments. Each
// user owns at most one env, launched from an allowlisted repo, branch and
// Tiltfile path, and removed once its expiration passes.
package ephdash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ghiac/ephdash/engine"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/notify"
	"github.com/ghiac/ephdash/store"
)

// DefaultLogTail is how many log lines the env page shows
const DefaultLogTail = 500

// ErrIncompleteSpec is returned when repo, branch or path is missing
var ErrIncompleteSpec = errors.New("missing env spec fields")

// Dashboard manages envs: one per user, validated against the allowlist
type Dashboard struct {
	store             store.EnvStore
	allowlist         *model.Allowlist
	notifier          notify.Notifier
	auth              AuthSettings
	httpClient        *http.Client
	now               func() time.Time
	defaultExpiration time.Duration
	logTail           int
	gatewayHost       string
	chartEnabled      bool

	// Expiration reaper (optional, started with StartReaper)
	reaper   *engine.Reaper
	reaperMu sync.RWMutex
}

// Options allows configuring Dashboard behavior
type Options struct {
	// Store holds envs; defaults to an in-memory store
	Store store.EnvStore
	// Notifier announces env changes; defaults to no notifications
	Notifier notify.Notifier
	// Auth decides how the user name is found
	Auth AuthSettings
	// HTTPClient is used for userinfo lookups against the auth proxy
	HTTPClient *http.Client
	// Clock replaces time.Now
	Clock func() time.Time
	// DefaultExpiration is how long a new env lives (default: 15 minutes)
	DefaultExpiration time.Duration
	// LogTail is how many log lines GetEnv returns (default: 500)
	LogTail int
	// GatewayHost is the public host envs are served under
	GatewayHost string
	// ChartEnabled turns on the expiration chart page
	ChartEnabled bool
}

// New creates a Dashboard for the given allowlist
func New(allowlist *model.Allowlist, opts *Options) (*Dashboard, error) {
	if allowlist == nil {
		return nil, fmt.Errorf("allowlist is required")
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Auth.Validate(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		store:             opts.Store,
		allowlist:         allowlist,
		notifier:          opts.Notifier,
		auth:              opts.Auth,
		httpClient:        opts.HTTPClient,
		now:               opts.Clock,
		defaultExpiration: opts.DefaultExpiration,
		logTail:           opts.LogTail,
		gatewayHost:       opts.GatewayHost,
		chartEnabled:      opts.ChartEnabled,
	}
	if d.store == nil {
		d.store = store.NewMemoryStore()
	}
	if d.notifier == nil {
		d.notifier = notify.Nop{}
	}
	if d.httpClient == nil {
		d.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.defaultExpiration <= 0 {
		d.defaultExpiration = model.DefaultExpiration
	}
	if d.logTail <= 0 {
		d.logTail = DefaultLogTail
	}
	return d, nil
}

// GetStore returns the env store
func (d *Dashboard) GetStore() store.EnvStore {
	return d.store
}

// GetAllowlist returns the allowlist
func (d *Dashboard) GetAllowlist() *model.Allowlist {
	return d.allowlist
}

// SetEnvSpec creates the user's env, or points the existing one at a new
// spec. A new env expires after the default expiration; an update keeps the
// current expiration.
func (d *Dashboard) SetEnvSpec(ctx context.Context, name string, spec model.EnvSpec) (*model.Env, error) {
	if name == "" {
		return nil, fmt.Errorf("env name cannot be empty")
	}
	if !spec.Complete() {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteSpec, spec)
	}
	if err := model.IsAllowed(d.allowlist, spec); err != nil {
		return nil, fmt.Errorf("may not create env for repo %q: %w", spec.Repo, err)
	}

	d.notifier.Notify(ctx, fmt.Sprintf("Updating env %s: %s", name, spec))

	env, err := d.store.Get(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		env = model.NewEnv(name, spec, d.now(), d.defaultExpiration)
	case err != nil:
		return nil, fmt.Errorf("failed to read env: %w", err)
	default:
		env.Spec = spec
	}

	if err := d.store.Put(ctx, env); err != nil {
		return nil, fmt.Errorf("failed to save env: %w", err)
	}
	return env, nil
}

// DeleteEnv removes the user's env. Deleting a missing env is not an error.
func (d *Dashboard) DeleteEnv(ctx context.Context, name string) error {
	d.notifier.Notify(ctx, fmt.Sprintf("Deleting env: %s", name))

	if err := d.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete env: %w", err)
	}
	return nil
}

// GetEnv returns the user's env with the tail of its logs, or (nil, nil)
// when the user has none.
func (d *Dashboard) GetEnv(ctx context.Context, name string) (*model.Env, error) {
	env, err := d.store.Get(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logs, err := d.store.Logs(ctx, name, d.logTail)
	if err != nil {
		return nil, fmt.Errorf("failed to read env logs: %w", err)
	}
	env.Logs = logs
	return env, nil
}

// ListEnvs returns every env ordered by name
func (d *Dashboard) ListEnvs(ctx context.Context) ([]*model.Env, error) {
	return d.store.List(ctx)
}

// AppendLogs adds output lines to an env. When envID is set it must match
// the current env, so output from a replaced env is rejected.
func (d *Dashboard) AppendLogs(ctx context.Context, name, envID string, lines []string) error {
	if envID != "" {
		env, err := d.store.Get(ctx, name)
		if err != nil {
			return err
		}
		if env.ID != envID {
			return fmt.Errorf("%w: %s is now %s", model.ErrConflict, name, env.ID)
		}
	}
	return d.store.AppendLogs(ctx, name, lines)
}

// Close stops the reaper and closes the store
func (d *Dashboard) Close() error {
	d.StopReaper()
	return d.store.Close()
}

// Version returns the current version of the dashboard
func Version() string {
	return "0.1.0"
}
