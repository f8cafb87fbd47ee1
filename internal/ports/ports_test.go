package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"lowest valid port", 1, false},
		{"highest valid port", 65535, false},
		{"common port", 443, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, p.Int())
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(0) })
	assert.NotPanics(t, func() { MustNew(22) })
}

func TestPortClassification(t *testing.T) {
	assert.True(t, MustNew(22).IsPrivileged())
	assert.True(t, MustNew(1023).IsPrivileged())
	assert.False(t, MustNew(1024).IsPrivileged())

	assert.False(t, MustNew(49151).IsEphemeral())
	assert.True(t, MustNew(49152).IsEphemeral())
	assert.True(t, MustNew(65535).IsEphemeral())
}

func TestNewRange(t *testing.T) {
	r, err := NewRange(MustNew(10), MustNew(20))
	require.NoError(t, err)
	assert.Equal(t, 11, r.Len())
	assert.Len(t, r.Ports(), 11)
	assert.Equal(t, "10-20", r.String())

	_, err = NewRange(MustNew(20), MustNew(10))
	assert.Error(t, err)

	single := Range{Start: MustNew(80), End: MustNew(80)}
	assert.Equal(t, "80", single.String())
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"single port", "80", []int{80}, false},
		{"port list", "22,80,443", []int{22, 80, 443}, false},
		{"range", "8000-8003", []int{8000, 8001, 8002, 8003}, false},
		{"mixed", "22, 80, 8000-8002", []int{22, 80, 8000, 8001, 8002}, false},
		{"overlap deduplicated", "80,79-81", []int{79, 80, 81}, false},
		{"unsorted input sorted", "443,22,80", []int{22, 80, 443}, false},
		{"empty", "", nil, true},
		{"garbage", "http", nil, true},
		{"port out of range", "0", nil, true},
		{"range out of bounds", "1-70000", nil, true},
		{"inverted range", "100-50", nil, true},
		{"trailing comma", "80,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			got := spec.Ports()
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, got[i].Int())
			}
			assert.Equal(t, len(tt.want), spec.Count())
		})
	}
}

func TestSpecString(t *testing.T) {
	spec, err := ParseSpec("22,8000-9000")
	require.NoError(t, err)
	assert.Equal(t, "22,8000-9000", spec.String())
}

func TestTop100(t *testing.T) {
	spec := Top100()
	assert.Equal(t, 100, spec.Count())

	seen := make(map[int]bool)
	for _, p := range spec.Ports() {
		seen[p.Int()] = true
	}
	for _, expected := range []int{22, 80, 443, 3306, 8080} {
		assert.True(t, seen[expected], "top 100 should include port %d", expected)
	}
}

func TestFull(t *testing.T) {
	spec := Full()
	all := spec.Ports()
	require.Len(t, all, 65535)
	assert.Equal(t, 1, all[0].Int())
	assert.Equal(t, 65535, all[len(all)-1].Int())
}
