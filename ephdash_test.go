package ephdash

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ghiac/ephdash/engine"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/store"
)

var testAllowlist = &model.Allowlist{
	RepoBase:  "tilt-dev",
	RepoNames: []string{"tilt-avatars", "tilt-example-html"},
}

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

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDashboard(t *testing.T) (*Dashboard, *recordingNotifier, *testClock) {
	t.Helper()
	notifier := &recordingNotifier{}
	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	d, err := New(testAllowlist, &Options{
		Notifier:     notifier,
		Auth:         AuthSettings{FakeUser: "alice"},
		Clock:        clock.Now,
		ChartEnabled: true,
		GatewayHost:  "envs.example.com",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, notifier, clock
}

var avatars = model.EnvSpec{Repo: "tilt-dev/tilt-avatars", Branch: "main", Path: "Tiltfile"}

func TestNew(t *testing.T) {
	if _, err := New(nil, &Options{Auth: AuthSettings{FakeUser: "a"}}); err == nil {
		t.Error("New without an allowlist should fail")
	}
	if _, err := New(testAllowlist, nil); err == nil {
		t.Error("New without auth settings should fail")
	}
	d, err := New(testAllowlist, &Options{Auth: AuthSettings{Proxy: "http://proxy"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.defaultExpiration != model.DefaultExpiration || d.logTail != DefaultLogTail {
		t.Errorf("defaults not applied: %v %d", d.defaultExpiration, d.logTail)
	}
	if d.GetStore() == nil || d.GetAllowlist() != testAllowlist {
		t.Error("store and allowlist should be set")
	}
}

func TestSetEnvSpec_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	d, notifier, clock := newTestDashboard(t)

	env, err := d.SetEnvSpec(ctx, "alice", avatars)
	if err != nil {
		t.Fatalf("SetEnvSpec() error = %v", err)
	}
	wantExp := clock.Now().Add(model.DefaultExpiration)
	if !env.Expiration.Equal(wantExp) {
		t.Errorf("Expiration = %v, want %v", env.Expiration, wantExp)
	}
	if env.ID == "" {
		t.Error("new env should get an ID")
	}

	clock.Advance(5 * time.Minute)
	updated, err := d.SetEnvSpec(ctx, "alice", model.EnvSpec{Repo: "tilt-dev/tilt-example-html", Branch: "dev", Path: "Tiltfile"})
	if err != nil {
		t.Fatalf("SetEnvSpec(update) error = %v", err)
	}
	if !updated.Expiration.Equal(wantExp) {
		t.Errorf("update changed expiration: got %v, want %v", updated.Expiration, wantExp)
	}
	if updated.ID != env.ID {
		t.Errorf("update changed ID: got %s, want %s", updated.ID, env.ID)
	}

	got, err := d.GetEnv(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("GetEnv() = %v, %v", got, err)
	}
	if got.Spec.Branch != "dev" {
		t.Errorf("Branch = %s, want dev", got.Spec.Branch)
	}

	msgs := notifier.messages()
	if len(msgs) != 2 || msgs[0] != "Updating env alice: tilt-dev/tilt-avatars@main:Tiltfile" {
		t.Errorf("notifications = %v", msgs)
	}
}

func TestSetEnvSpec_Rejected(t *testing.T) {
	ctx := context.Background()
	d, notifier, _ := newTestDashboard(t)

	_, err := d.SetEnvSpec(ctx, "alice", model.EnvSpec{Repo: "evil/repo", Branch: "main", Path: "Tiltfile"})
	if !errors.Is(err, model.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
	_, err = d.SetEnvSpec(ctx, "alice", model.EnvSpec{Repo: "tilt-dev/tilt-avatars"})
	if !errors.Is(err, ErrIncompleteSpec) {
		t.Errorf("error = %v, want ErrIncompleteSpec", err)
	}
	if _, err := d.SetEnvSpec(ctx, "", avatars); err == nil {
		t.Error("empty name should fail")
	}
	if msgs := notifier.messages(); len(msgs) != 0 {
		t.Errorf("rejected specs should not notify, got %v", msgs)
	}
	if env, _ := d.GetEnv(ctx, "alice"); env != nil {
		t.Error("rejected spec should not create an env")
	}
}

func TestDeleteEnv(t *testing.T) {
	ctx := context.Background()
	d, notifier, _ := newTestDashboard(t)

	if _, err := d.SetEnvSpec(ctx, "alice", avatars); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteEnv(ctx, "alice"); err != nil {
		t.Fatalf("DeleteEnv() error = %v", err)
	}
	if env, err := d.GetEnv(ctx, "alice"); env != nil || err != nil {
		t.Errorf("GetEnv after delete = %v, %v; want nil, nil", env, err)
	}
	if err := d.DeleteEnv(ctx, "alice"); err != nil {
		t.Errorf("deleting a missing env should succeed: %v", err)
	}

	msgs := notifier.messages()
	if msgs[len(msgs)-1] != "Deleting env: alice" {
		t.Errorf("last notification = %q", msgs[len(msgs)-1])
	}
}

func TestGetEnv_Logs(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDashboard(t)
	d.logTail = 2

	env, err := d.SetEnvSpec(ctx, "alice", avatars)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AppendLogs(ctx, "alice", "", []string{"one\ntwo\nthree"}); err != nil {
		t.Fatalf("AppendLogs() error = %v", err)
	}
	if err := d.AppendLogs(ctx, "alice", env.ID, []string{"four"}); err != nil {
		t.Fatalf("AppendLogs(with id) error = %v", err)
	}
	if err := d.AppendLogs(ctx, "alice", "stale-id", []string{"five"}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("AppendLogs(stale id) error = %v, want ErrConflict", err)
	}
	if err := d.AppendLogs(ctx, "bob", "", []string{"x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("AppendLogs(missing env) error = %v, want ErrNotFound", err)
	}

	got, err := d.GetEnv(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Logs) != 2 || got.Logs[0] != "three" || got.Logs[1] != "four" {
		t.Errorf("Logs = %v, want [three four]", got.Logs)
	}
}

func TestReaper_Integration(t *testing.T) {
	ctx := context.Background()
	d, notifier, clock := newTestDashboard(t)

	if _, err := d.SetEnvSpec(ctx, "alice", avatars); err != nil {
		t.Fatal(err)
	}
	clock.Advance(model.DefaultExpiration)

	d.StartReaper(ctx, engine.ReaperConfig{Interval: 10 * time.Millisecond})
	d.StartReaper(ctx, engine.ReaperConfig{Interval: 10 * time.Millisecond})
	if d.GetReaper() == nil {
		t.Fatal("reaper should be set after StartReaper")
	}

	expired := func() bool {
		for _, msg := range notifier.messages() {
			if msg == "Env expired: alice" {
				return true
			}
		}
		return false
	}
	deadline := time.Now().Add(2 * time.Second)
	for !expired() {
		if time.Now().After(deadline) {
			t.Fatalf("expired env was not reaped, notifications: %v", notifier.messages())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if env, err := d.GetEnv(ctx, "alice"); env != nil || err != nil {
		t.Errorf("GetEnv after reaping = %v, %v; want nil, nil", env, err)
	}

	d.StopReaper()
	if d.GetReaper() != nil {
		t.Error("reaper should be cleared after StopReaper")
	}
}
