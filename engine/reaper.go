package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ghiac/ephdash/log"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/notify"
	"github.com/ghiac/ephdash/store"
)

// ReaperConfig holds configuration for the expiration reaper
type ReaperConfig struct {
	// Interval is how often to check envs (default: 30 seconds)
	Interval time.Duration

	// DefaultExpiration is assigned to envs that have none (default: 15 minutes)
	DefaultExpiration time.Duration
}

// DefaultReaperConfig returns default configuration
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval:          30 * time.Second,
		DefaultExpiration: model.DefaultExpiration,
	}
}

// SweepResult counts what one pass over the store did
type SweepResult struct {
	Checked int
	Stamped int
	Deleted int
	Failed  int
}

// Reaper periodically stamps envs with an expiration and deletes expired ones
type Reaper struct {
	store    store.EnvStore
	notifier notify.Notifier
	config   ReaperConfig
	now      func() time.Time
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewReaper creates a new expiration reaper
func NewReaper(envs store.EnvStore, notifier notify.Notifier, config ReaperConfig) *Reaper {
	defaults := DefaultReaperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.DefaultExpiration <= 0 {
		config.DefaultExpiration = defaults.DefaultExpiration
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Reaper{
		store:    envs,
		notifier: notifier,
		config:   config,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// SetClock replaces the reaper's time source
func (r *Reaper) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Running reports whether the loop is active
func (r *Reaper) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start starts the reaper in a background goroutine
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		log.Log.Warnf("[Reaper] ⚠️  Reaper is already running")
		return
	}

	r.running = true
	r.stopChan = make(chan struct{})
	log.Log.Infof("[Reaper] 🚀 Starting expiration reaper | Interval: %v | DefaultExpiration: %v",
		r.config.Interval, r.config.DefaultExpiration)

	go r.run(ctx, r.stopChan)
}

// Stop stops the reaper gracefully
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	log.Log.Infof("[Reaper] 🛑 Stopping expiration reaper")
	close(r.stopChan)
	r.running = false
}

func (r *Reaper) run(ctx context.Context, stop <-chan struct{}) {
	r.Sweep(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-stop:
			log.Log.Infof("[Reaper] ✅ Reaper stopped")
			return
		case <-ctx.Done():
			log.Log.Infof("[Reaper] ✅ Reaper stopped (context cancelled)")
			r.mu.Lock()
			if r.stopChan == stop {
				r.running = false
			}
			r.mu.Unlock()
			return
		}
	}
}

// Sweep makes one pass over every env in the store
func (r *Reaper) Sweep(ctx context.Context) SweepResult {
	var result SweepResult

	envs, err := r.store.List(ctx)
	if err != nil {
		log.Log.Errorf("[Reaper] ❌ Failed to list envs: %v", err)
		return result
	}

	r.mu.Lock()
	now := r.now()
	r.mu.Unlock()

	for _, env := range envs {
		result.Checked++
		if err := r.reconcile(ctx, env, now, &result); err != nil {
			result.Failed++
			log.Log.Errorf("[Reaper] ❌ Failed to reconcile env %s: %v", env.Name, err)
		}
	}

	if result.Stamped > 0 || result.Deleted > 0 || result.Failed > 0 {
		log.Log.Infof("[Reaper] 📊 Sweep completed | Checked: %d | Stamped: %d | Deleted: %d | Failed: %d",
			result.Checked, result.Stamped, result.Deleted, result.Failed)
	} else {
		log.Log.Debugf("[Reaper] Sweep completed | Checked: %d", result.Checked)
	}
	return result
}

func (r *Reaper) reconcile(ctx context.Context, env *model.Env, now time.Time, result *SweepResult) error {
	if !env.HasExpiration() {
		env.Expiration = now.Add(r.config.DefaultExpiration)
		if err := r.store.Put(ctx, env); err != nil {
			return fmt.Errorf("failed to set expiration: %w", err)
		}
		result.Stamped++
		log.Log.Infof("[Reaper] ⏱️  Setting expiration for %s: %s", env.Name, env.ExpirationText())
		return nil
	}

	if !env.Expired(now) {
		return nil
	}

	log.Log.Infof("[Reaper] 🗑️  Deleting env %s because the expiration is passed: %s", env.Name, env.ExpirationText())
	if err := r.store.Delete(ctx, env.Name); err != nil {
		return fmt.Errorf("failed to delete expired env: %w", err)
	}
	result.Deleted++
	r.notifier.Notify(ctx, fmt.Sprintf("Env expired: %s", env.Name))
	return nil
}

// GetConfig returns the reaper configuration
func (r *Reaper) GetConfig() ReaperConfig {
	return r.config
}
