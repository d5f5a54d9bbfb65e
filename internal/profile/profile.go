// Package profile stores the local identity of the command-line client: the
// display name, the server to talk to and the groups joined by code. The
// server never trusts any of it.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/outings/internal/config"
)

// DefaultServer is used until the profile names another server.
const DefaultServer = "http://localhost:8080"

// Group is a group the user joined.
type Group struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// Profile is the client's local key-value state.
type Profile struct {
	DisplayName string  `yaml:"display_name"`
	Server      string  `yaml:"server"`
	Groups      []Group `yaml:"groups"`
}

// DefaultPath returns the profile location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "outings", "profile.yaml"), nil
}

// Load reads the profile at path. A missing file yields an empty profile.
func Load(path string) (*Profile, error) {
	p := &Profile{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}
	if p.Server == "" {
		p.Server = DefaultServer
	}
	return p, nil
}

// Save writes the profile atomically.
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(path, data)
}

// AddGroup remembers g. It reports false when the group was already known,
// in which case its name and code are refreshed.
func (p *Profile) AddGroup(g Group) bool {
	for i := range p.Groups {
		if p.Groups[i].ID == g.ID {
			p.Groups[i] = g
			return false
		}
	}
	p.Groups = append(p.Groups, g)
	return true
}

// RemoveGroup forgets the group with the given id or code.
func (p *Profile) RemoveGroup(idOrCode string) bool {
	for i, g := range p.Groups {
		if g.ID == idOrCode || strings.EqualFold(g.Code, idOrCode) {
			p.Groups = append(p.Groups[:i], p.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// GroupIDs returns the ids of the joined groups.
func (p *Profile) GroupIDs() []string {
	ids := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		ids[i] = g.ID
	}
	return ids
}
