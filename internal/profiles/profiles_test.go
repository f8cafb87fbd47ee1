package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/Scuttle/internal/errors"
)

func TestNewDefaults(t *testing.T) {
	p := New("lab")
	assert.Equal(t, "lab", p.Name)
	assert.Equal(t, "1-1000", p.Ports)
	assert.Equal(t, "connect", p.ScanType)
	assert.Equal(t, 500, p.Concurrency)
	assert.Equal(t, 3000, p.TimeoutMs)
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"valid", func(p *Profile) {}, false},
		{"empty name", func(p *Profile) { p.Name = "" }, true},
		{"name with spaces", func(p *Profile) { p.Name = "my profile" }, true},
		{"name with slash", func(p *Profile) { p.Name = "a/b" }, true},
		{"hyphenated name", func(p *Profile) { p.Name = "dmz-servers_2" }, false},
		{"bad ports", func(p *Profile) { p.Ports = "eighty" }, true},
		{"bad scan type", func(p *Profile) { p.ScanType = "xmas" }, true},
		{"udp type", func(p *Profile) { p.ScanType = "udp" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("base")
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBuiltins(t *testing.T) {
	builtins := Builtins()
	require.Len(t, builtins, 3)

	names := make(map[string]Profile, len(builtins))
	for _, p := range builtins {
		require.NoError(t, p.Validate(), "builtin %s must validate", p.Name)
		names[p.Name] = p
	}

	require.Contains(t, names, "quick")
	require.Contains(t, names, "full")
	require.Contains(t, names, "web")

	spec, err := names["quick"].PortSpec()
	require.NoError(t, err)
	assert.Equal(t, 20, spec.Count())

	assert.Equal(t, "1-65535", names["full"].Ports)
	assert.True(t, names["web"].Banner)

	assert.True(t, IsBuiltin("quick"))
	assert.False(t, IsBuiltin("custom"))
}

func TestManagerGetBuiltin(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	p, err := manager.Get("quick")
	require.NoError(t, err)
	assert.Equal(t, "quick", p.Name)
}

func TestManagerGetMissing(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = manager.Get("nope")
	require.Error(t, err)
	assert.Equal(t, errors.CodeProfileNotFound, errors.CodeOf(err))
}

func TestManagerSaveGetDelete(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	custom := New("dns-sweep")
	custom.Ports = "53,5353"
	custom.ScanType = "udp"
	custom.Description = "UDP DNS sweep"
	require.NoError(t, manager.Save(custom))

	// Persisted across manager instances.
	reopened, err := NewManager(dir)
	require.NoError(t, err)
	got, err := reopened.Get("dns-sweep")
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	require.NoError(t, reopened.Delete("dns-sweep"))
	_, err = reopened.Get("dns-sweep")
	assert.Equal(t, errors.CodeProfileNotFound, errors.CodeOf(err))
}

func TestManagerListOrder(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.Save(New("zeta")))
	require.NoError(t, manager.Save(New("alpha")))

	list, err := manager.List()
	require.NoError(t, err)
	require.Len(t, list, 5)

	// Built-ins first, then customs sorted by name.
	assert.Equal(t, "quick", list[0].Name)
	assert.Equal(t, "alpha", list[3].Name)
	assert.Equal(t, "zeta", list[4].Name)
}

func TestManagerProtectsBuiltins(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	clone := New("quick")
	err = manager.Save(clone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in")

	err = manager.Delete("full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in")
}

func TestManagerRejectsInvalidProfile(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	bad := New("ok-name")
	bad.Ports = "not-ports"
	assert.Error(t, manager.Save(bad))
}

func TestDeleteMissingCustom(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = manager.Delete("ghost")
	require.Error(t, err)
	assert.Equal(t, errors.CodeProfileNotFound, errors.CodeOf(err))
}
