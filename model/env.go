package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiration is how long a new environment lives.
const DefaultExpiration = 15 * time.Minute

// ErrConflict is returned when an operation would touch an environment that
// belongs to someone else.
var ErrConflict = errors.New("conflict with existing env")

// EnvSpec describes what an environment runs: a repository, a branch and the
// path of the Tiltfile inside it.
type EnvSpec struct {
	Repo   string `json:"repo" bson:"repo"`
	Branch string `json:"branch" bson:"branch"`
	Path   string `json:"path" bson:"path"`
}

// Complete reports whether every field is set.
func (s EnvSpec) Complete() bool {
	return s.Repo != "" && s.Branch != "" && s.Path != ""
}

// String formats the spec as repo@branch:path.
func (s EnvSpec) String() string {
	return fmt.Sprintf("%s@%s:%s", s.Repo, s.Branch, s.Path)
}

// Env is one user's environment. There is at most one per user and it is
// keyed by the user name.
type Env struct {
	ID         string    `json:"id" bson:"env_id"`
	Name       string    `json:"name" bson:"_id"`
	Spec       EnvSpec   `json:"spec" bson:"spec"`
	Expiration time.Time `json:"expiration" bson:"expiration"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`

	// Logs holds the tail of the environment's output. It is filled on read
	// and not persisted with the env record.
	Logs []string `json:"logs,omitempty" bson:"-"`
}

// NewEnv creates an environment for name expiring ttl after now.
func NewEnv(name string, spec EnvSpec, now time.Time, ttl time.Duration) *Env {
	return &Env{
		ID:         uuid.NewString(),
		Name:       name,
		Spec:       spec,
		Expiration: now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasExpiration reports whether an expiration has been assigned.
func (e *Env) HasExpiration() bool {
	return !e.Expiration.IsZero()
}

// Expired reports whether the expiration is at or before now.
func (e *Env) Expired(now time.Time) bool {
	return e.HasExpiration() && !now.Before(e.Expiration)
}

// Remaining returns the time left until expiration, never negative.
func (e *Env) Remaining(now time.Time) time.Duration {
	if !e.HasExpiration() {
		return 0
	}
	d := e.Expiration.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ExpirationText formats the expiration the way the page's countdown reads it.
func (e *Env) ExpirationText() string {
	if !e.HasExpiration() {
		return ""
	}
	return e.Expiration.UTC().Format(time.RFC3339)
}
