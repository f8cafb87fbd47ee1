package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		port int
		want string
	}{
		{22, "ssh"},
		{53, "dns"},
		{80, "http"},
		{443, "https"},
		{3306, "mysql"},
		{5432, "postgresql"},
		{6379, "redis"},
		{8080, "http-proxy"},
	}

	for _, tt := range tests {
		name, ok := Lookup(tt.port)
		assert.True(t, ok, "port %d should be known", tt.port)
		assert.Equal(t, tt.want, name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup(48321)
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	assert.Equal(t, "ssh", Name(22))
	assert.Equal(t, "unknown", Name(48321))
}
