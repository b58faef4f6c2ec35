package ephdash

import (
	"context"

	"github.com/ghiac/ephdash/engine"
	"github.com/ghiac/ephdash/log"
)

// StartReaper starts the expiration reaper over the dashboard's store.
// A zero DefaultExpiration falls back to the dashboard's own.
func (d *Dashboard) StartReaper(ctx context.Context, config engine.ReaperConfig) {
	if config.DefaultExpiration <= 0 {
		config.DefaultExpiration = d.defaultExpiration
	}

	d.reaperMu.Lock()
	if d.reaper != nil {
		d.reaperMu.Unlock()
		log.Log.Warnf("[Dashboard] ⚠️  Reaper is already started")
		return
	}
	reaper := engine.NewReaper(d.store, d.notifier, config)
	reaper.SetClock(d.now)
	d.reaper = reaper
	d.reaperMu.Unlock()

	reaper.Start(ctx)
	cfg := reaper.GetConfig()
	log.Log.Infof("[Dashboard] ✅ Expiration reaper started | Interval: %v | DefaultExpiration: %v",
		cfg.Interval, cfg.DefaultExpiration)
}

// StopReaper stops the expiration reaper gracefully
func (d *Dashboard) StopReaper() {
	d.reaperMu.Lock()
	reaper := d.reaper
	d.reaper = nil
	d.reaperMu.Unlock()

	if reaper != nil {
		reaper.Stop()
		log.Log.Infof("[Dashboard] 🛑 Expiration reaper stopped")
	}
}

// GetReaper returns the current reaper instance, or nil
func (d *Dashboard) GetReaper() *engine.Reaper {
	d.reaperMu.RLock()
	defer d.reaperMu.RUnlock()
	return d.reaper
}
