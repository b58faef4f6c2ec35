package main

import (
	"path/filepath"
	"testing"

	"github.com/ghiac/ephdash/config"
	"github.com/ghiac/ephdash/store"
)

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}
	s, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore(memory) error = %v", err)
	}
	if _, ok := s.(*store.MemoryStore); !ok {
		t.Errorf("openStore(memory) = %T, want *store.MemoryStore", s)
	}
	s.Close()

	cfg.Store = config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "envs.db")}
	s, err = openStore(cfg)
	if err != nil {
		t.Fatalf("openStore(sqlite) error = %v", err)
	}
	if _, ok := s.(*store.SQLiteStore); !ok {
		t.Errorf("openStore(sqlite) = %T, want *store.SQLiteStore", s)
	}
	s.Close()

	cfg.Store.Driver = "redis"
	if _, err := openStore(cfg); err == nil {
		t.Error("openStore with an unknown driver should fail")
	}
}

func TestApplyServeFlags(t *testing.T) {
	defer func() { serveFlags = serveOptions{} }()

	cfg := &config.Config{
		HTTP:  config.HTTPConfig{Port: 8080},
		Auth:  config.AuthConfig{Proxy: "http://proxy"},
		Store: config.StoreConfig{Driver: config.DriverMemory},
	}
	serveFlags.port = 9000
	serveFlags.fakeUser = "alice"
	serveFlags.store = config.DriverSQLite
	applyServeFlags(cfg)

	if cfg.HTTP.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.Auth.FakeUser != "alice" || cfg.Auth.Proxy != "" {
		t.Errorf("Auth = %+v, want only the fake user", cfg.Auth)
	}
	if cfg.Store.Driver != config.DriverSQLite {
		t.Errorf("Driver = %s, want sqlite", cfg.Store.Driver)
	}
}

func TestParseCookies(t *testing.T) {
	cookies, err := parseCookies([]string{"_oauth2_proxy=abc=", "theme=dark"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 2 || cookies[0].Name != "_oauth2_proxy" || cookies[0].Value != "abc=" {
		t.Errorf("cookies = %+v", cookies)
	}
	if _, err := parseCookies([]string{"novalue"}); err == nil {
		t.Error("a cookie without '=' should fail")
	}
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "watch"} {
		if !names[want] {
			t.Errorf("missing %s command", want)
		}
	}
}
