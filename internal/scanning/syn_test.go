package scanning

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/Scuttle/internal/errors"
)

func TestNewSynScannerRejectsIPv6(t *testing.T) {
	_, err := NewSynScanner(net.ParseIP("2001:db8::1"), "", time.Second)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedTarget, errors.CodeOf(err))
	assert.True(t, errors.IsFatal(err))
	assert.NotEmpty(t, errors.Hint(err))
}

func TestNewSynScannerUnknownInterface(t *testing.T) {
	_, err := NewSynScanner(net.ParseIP("192.168.1.1"), "definitely-not-a-nic0", time.Second)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInterfaceNotFound, errors.CodeOf(err))
	assert.True(t, errors.IsFatal(err))
}

func TestResolveInterfaceByName(t *testing.T) {
	ifaces, err := net.Interfaces()
	require.NoError(t, err)

	// Find any interface with an IPv4 address to resolve by name.
	var candidate string
	for i := range ifaces {
		if _, addrErr := interfaceIPv4(&ifaces[i]); addrErr == nil {
			candidate = ifaces[i].Name
			break
		}
	}
	if candidate == "" {
		t.Skip("no interface with an IPv4 address available")
	}

	iface, ip, err := resolveInterface(candidate)
	require.NoError(t, err)
	assert.Equal(t, candidate, iface.Name)
	assert.NotNil(t, ip.To4())
}

func TestIsPermissionError(t *testing.T) {
	assert.True(t, isPermissionError(fmt.Errorf("eth0: You don't have permission to capture on that device")))
	assert.True(t, isPermissionError(fmt.Errorf("socket: Operation not permitted")))
	assert.False(t, isPermissionError(fmt.Errorf("no such device")))
}

func TestSynScannerDescribesItself(t *testing.T) {
	// Behavior checks that need no capture handle.
	s := &SynScanner{target: net.ParseIP("10.0.0.1").To4(), timeout: 2 * time.Second, ifaceName: "eth0"}
	assert.Equal(t, TypeSyn, s.Type())
	assert.True(t, s.RequiresPrivileges())
	assert.Equal(t, 2*time.Second, s.Timeout())
	assert.Equal(t, "eth0", s.Interface())
}
