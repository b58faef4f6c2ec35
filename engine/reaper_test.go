package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/store"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func putEnv(t *testing.T, s store.EnvStore, name string, expiration time.Time) {
	t.Helper()
	env := &model.Env{
		ID:         "id-" + name,
		Name:       name,
		Spec:       model.EnvSpec{Repo: "tilt-dev/" + name, Branch: "main", Path: "Tiltfile"},
		Expiration: expiration,
	}
	if err := s.Put(context.Background(), env); err != nil {
		t.Fatalf("Failed to put env %s: %v", name, err)
	}
}

func TestReaper_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	envs := store.NewMemoryStore()
	notifier := &recordingNotifier{}

	putEnv(t, envs, "fresh", time.Time{})
	putEnv(t, envs, "live", now.Add(time.Minute))
	putEnv(t, envs, "boundary", now)
	putEnv(t, envs, "old", now.Add(-time.Hour))

	reaper := NewReaper(envs, notifier, ReaperConfig{Interval: time.Hour, DefaultExpiration: 10 * time.Minute})
	reaper.SetClock(func() time.Time { return now })

	result := reaper.Sweep(ctx)
	if result.Checked != 4 || result.Stamped != 1 || result.Deleted != 2 || result.Failed != 0 {
		t.Errorf("Sweep() = %+v, want Checked 4, Stamped 1, Deleted 2", result)
	}

	fresh, err := envs.Get(ctx, "fresh")
	if err != nil {
		t.Fatalf("fresh env should survive: %v", err)
	}
	if want := now.Add(10 * time.Minute); !fresh.Expiration.Equal(want) {
		t.Errorf("fresh expiration = %v, want %v", fresh.Expiration, want)
	}
	if _, err := envs.Get(ctx, "live"); err != nil {
		t.Errorf("live env should survive: %v", err)
	}
	for _, name := range []string{"boundary", "old"} {
		if _, err := envs.Get(ctx, name); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s env should be deleted, got err %v", name, err)
		}
	}

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notifications, got %v", msgs)
	}
	if msgs[0] != "Env expired: boundary" || msgs[1] != "Env expired: old" {
		t.Errorf("notifications = %v", msgs)
	}

	// A second pass finds nothing to do.
	if again := reaper.Sweep(ctx); again.Stamped != 0 || again.Deleted != 0 {
		t.Errorf("second Sweep() = %+v, want no changes", again)
	}
}

func TestReaper_StartStop(t *testing.T) {
	envs := store.NewMemoryStore()
	putEnv(t, envs, "old", time.Now().Add(-time.Minute))

	reaper := NewReaper(envs, nil, ReaperConfig{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Start(ctx)
	reaper.Start(ctx)
	if !reaper.Running() {
		t.Fatal("reaper should be running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := envs.Get(ctx, "old"); errors.Is(err, store.ErrNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired env was not reaped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	reaper.Stop()
	reaper.Stop()
	if reaper.Running() {
		t.Error("reaper should not be running after Stop")
	}
}

func TestReaper_ContextCancel(t *testing.T) {
	reaper := NewReaper(store.NewMemoryStore(), nil, ReaperConfig{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	reaper.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for reaper.Running() {
		if time.Now().After(deadline) {
			t.Fatal("reaper kept running after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewReaper_Defaults(t *testing.T) {
	reaper := NewReaper(store.NewMemoryStore(), nil, ReaperConfig{})
	if reaper.config.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", reaper.config.Interval)
	}
	if reaper.config.DefaultExpiration != model.DefaultExpiration {
		t.Errorf("DefaultExpiration = %v, want %v", reaper.config.DefaultExpiration, model.DefaultExpiration)
	}
}
