package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrForbidden marks a spec rejected by the allowlist.
var ErrForbidden = errors.New("forbidden")

// Default selector choices when the allowlist does not list any for a repo.
const (
	DefaultBranch = "main"
	DefaultPath   = "Tiltfile"
)

// Allowlist restricts which repositories may be launched. Repos are named
// RepoBase/RepoName. Branches and Paths optionally list selector choices per
// repo name.
type Allowlist struct {
	RepoBase  string              `json:"repoBase" yaml:"repoBase"`
	RepoNames []string            `json:"repoNames" yaml:"repoNames"`
	Branches  map[string][]string `json:"branches,omitempty" yaml:"branches,omitempty"`
	Paths     map[string][]string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// ParseAllowlist decodes an allowlist from YAML.
func ParseAllowlist(data []byte) (*Allowlist, error) {
	allowlist := &Allowlist{}
	if err := yaml.Unmarshal(data, allowlist); err != nil {
		return nil, fmt.Errorf("reading allowlist: %w", err)
	}
	if allowlist.RepoBase == "" {
		return nil, fmt.Errorf("reading allowlist: repoBase is required")
	}
	return allowlist, nil
}

// LoadAllowlist reads the allowlist from inline YAML, or from file when
// inline is empty.
func LoadAllowlist(inline, file string) (*Allowlist, error) {
	if inline != "" {
		return ParseAllowlist([]byte(inline))
	}
	if file == "" {
		return nil, fmt.Errorf("missing allowlist: set ALLOWLIST or ALLOWLIST_FILE")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading allowlist file: %w", err)
	}
	return ParseAllowlist(data)
}

// RepoOptions lists the full names of every allowed repo.
func (a *Allowlist) RepoOptions() []string {
	out := make([]string, 0, len(a.RepoNames))
	for _, n := range a.RepoNames {
		out = append(out, a.RepoBase+"/"+n)
	}
	return out
}

// BranchOptions lists branch choices for a full repo name.
func (a *Allowlist) BranchOptions(repo string) []string {
	if b := a.Branches[repoName(repo)]; len(b) > 0 {
		return b
	}
	return []string{DefaultBranch}
}

// PathOptions lists Tiltfile path choices for a full repo name.
func (a *Allowlist) PathOptions(repo string) []string {
	if p := a.Paths[repoName(repo)]; len(p) > 0 {
		return p
	}
	return []string{DefaultPath}
}

func repoName(repo string) string {
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		return repo[i+1:]
	}
	return repo
}

// IsAllowed validates a spec for anything that looks suspicious:
//   - the repo must match the allowlist,
//   - the branch must look like a reasonable branch name,
//   - the path must be a clean relative path.
func IsAllowed(allowlist *Allowlist, spec EnvSpec) error {
	if err := isRepoAllowed(allowlist, spec.Repo); err != nil {
		return err
	}
	if err := isBranchAllowed(spec.Branch); err != nil {
		return err
	}
	return isPathAllowed(spec.Path)
}

func isRepoAllowed(allowlist *Allowlist, repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) < 2 {
		return fmt.Errorf("%w: malformed repo: %s", ErrForbidden, repo)
	}

	repoBase := strings.Join(parts[:len(parts)-1], "/")
	name := parts[len(parts)-1]
	if repoBase != allowlist.RepoBase {
		return fmt.Errorf("%w: unrecognized base: %s", ErrForbidden, repo)
	}

	for _, n := range allowlist.RepoNames {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("%w: unrecognized repo name: %s", ErrForbidden, repo)
}

var branchRe = regexp.MustCompile("^[a-zA-Z][a-zA-Z_/0-9-]*$")

func isBranchAllowed(branch string) error {
	if !branchRe.MatchString(branch) {
		return fmt.Errorf("%w: malformed branch name", ErrForbidden)
	}
	return nil
}

var pathRe = regexp.MustCompile("^[a-zA-Z0-9][a-zA-Z_/0-9.-]*$")

func isPathAllowed(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("%w: path must be relative", ErrForbidden)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: no '..' references allowed in path", ErrForbidden)
	}
	if !pathRe.MatchString(path) {
		return fmt.Errorf("%w: malformed path", ErrForbidden)
	}
	return nil
}
