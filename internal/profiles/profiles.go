// Package profiles provides scan profile management for scuttle.
// A profile is a named, reusable scan configuration saved to disk in a
// single YAML file, alongside a set of built-in presets.
package profiles

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/ports"
	"gopkg.in/yaml.v3"
)

const (
	profilesFileName = "profiles.yaml"
	profileDirPerm   = 0750
	profileFilePerm  = 0600

	defaultScanType    = "connect"
	defaultConcurrency = 500
	defaultTimeoutMs   = 3000
)

// Profile is a saved scan configuration.
type Profile struct {
	// Name identifies the profile.
	Name string `yaml:"name"`
	// Description explains what the profile is for.
	Description string `yaml:"description,omitempty"`
	// Ports is the port specification string.
	Ports string `yaml:"ports"`
	// ScanType is one of connect, syn, udp.
	ScanType string `yaml:"scan_type"`
	// Concurrency caps in-flight probes.
	Concurrency int `yaml:"concurrency"`
	// TimeoutMs is the per-probe timeout in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`
	// Banner enables banner grabbing.
	Banner bool `yaml:"banner,omitempty"`
	// RateLimit caps probes per second (0 = unlimited).
	RateLimit int `yaml:"rate_limit,omitempty"`
}

// New creates a profile with defaults applied.
func New(name string) Profile {
	return Profile{
		Name:        name,
		Ports:       "1-1000",
		ScanType:    defaultScanType,
		Concurrency: defaultConcurrency,
		TimeoutMs:   defaultTimeoutMs,
	}
}

// PortSpec parses the profile's port specification.
func (p Profile) PortSpec() (ports.Spec, error) {
	return ports.ParseSpec(p.Ports)
}

// Validate checks that the profile is usable.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New(errors.CodeValidation, "profile name cannot be empty")
	}
	for _, c := range p.Name {
		if !(c == '-' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return errors.Newf(errors.CodeValidation,
				"profile name %q may only contain alphanumerics, hyphens, and underscores", p.Name)
		}
	}
	if _, err := p.PortSpec(); err != nil {
		return errors.Wrap(errors.CodeValidation, "invalid port specification", err)
	}
	switch p.ScanType {
	case "connect", "syn", "udp":
	default:
		return errors.Newf(errors.CodeValidation, "invalid scan type: %s", p.ScanType)
	}
	return nil
}

// Builtins returns the built-in profile presets.
func Builtins() []Profile {
	return []Profile{
		{
			Name:        "quick",
			Description: "Quick scan of the most common ports",
			Ports:       "21,22,23,25,53,80,110,111,135,139,143,443,445,993,995,1723,3306,3389,5900,8080",
			ScanType:    "connect",
			Concurrency: 1000,
			TimeoutMs:   2000,
		},
		{
			Name:        "full",
			Description: "Complete scan of all 65535 ports",
			Ports:       "1-65535",
			ScanType:    "connect",
			Concurrency: 500,
			TimeoutMs:   3000,
		},
		{
			Name:        "web",
			Description: "Common web service ports with banner grabbing",
			Ports:       "80,443,8000,8080,8443,8888,9000,9090,3000,5000",
			ScanType:    "connect",
			Concurrency: 100,
			TimeoutMs:   5000,
			Banner:      true,
		},
	}
}

// IsBuiltin reports whether a name belongs to a built-in profile.
func IsBuiltin(name string) bool {
	for _, p := range Builtins() {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Manager loads and persists custom profiles from a single YAML file
// under the base directory. Built-in profiles are always available and
// cannot be modified or deleted; a custom profile with the same name
// shadows nothing.
type Manager struct {
	path string
}

// NewManager creates a profile manager rooted at baseDir.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, profileDirPerm); err != nil {
		return nil, errors.Wrap(errors.CodeStorage, "failed to create profile directory", err)
	}
	return &Manager{path: filepath.Join(baseDir, profilesFileName)}, nil
}

// Get returns a profile by name, built-ins first.
func (m *Manager) Get(name string) (Profile, error) {
	for _, p := range Builtins() {
		if p.Name == name {
			return p, nil
		}
	}
	custom, err := m.loadCustom()
	if err != nil {
		return Profile{}, err
	}
	if p, ok := custom[name]; ok {
		return p, nil
	}
	return Profile{}, errors.Newf(errors.CodeProfileNotFound, "profile not found: %s", name)
}

// List returns all profiles, built-ins first, customs sorted by name.
func (m *Manager) List() ([]Profile, error) {
	out := Builtins()
	custom, err := m.loadCustom()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, custom[name])
	}
	return out, nil
}

// Save validates and persists a custom profile. Built-in names are
// reserved.
func (m *Manager) Save(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if IsBuiltin(p.Name) {
		return errors.Newf(errors.CodeValidation, "cannot overwrite built-in profile: %s", p.Name)
	}
	custom, err := m.loadCustom()
	if err != nil {
		return err
	}
	custom[p.Name] = p
	return m.saveCustom(custom)
}

// Delete removes a custom profile. Built-ins cannot be deleted.
func (m *Manager) Delete(name string) error {
	if IsBuiltin(name) {
		return errors.Newf(errors.CodeValidation, "cannot delete built-in profile: %s", name)
	}
	custom, err := m.loadCustom()
	if err != nil {
		return err
	}
	if _, ok := custom[name]; !ok {
		return errors.Newf(errors.CodeProfileNotFound, "profile not found: %s", name)
	}
	delete(custom, name)
	return m.saveCustom(custom)
}

func (m *Manager) loadCustom() (map[string]Profile, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Profile{}, nil
		}
		return nil, errors.Wrap(errors.CodeStorage, "failed to read profiles file", err)
	}
	var list []Profile
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrap(errors.CodeStorage, "failed to parse profiles file", err)
	}
	out := make(map[string]Profile, len(list))
	for _, p := range list {
		out[p.Name] = p
	}
	return out, nil
}

func (m *Manager) saveCustom(custom map[string]Profile) error {
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]Profile, 0, len(custom))
	for _, name := range names {
		list = append(list, custom[name])
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return errors.Wrap(errors.CodeStorage, "failed to encode profiles", err)
	}
	if err := os.WriteFile(m.path, data, profileFilePerm); err != nil {
		return errors.Wrap(errors.CodeStorage, "failed to write profiles file", err)
	}
	return nil
}
