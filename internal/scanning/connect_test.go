package scanning

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/Scuttle/internal/ports"
)

func mustIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	require.NotNil(t, ip)
	return ip
}

// listenTCP opens a listener on an ephemeral loopback port and returns
// its port number.
func listenTCP(t *testing.T) (net.Listener, ports.Port) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	addr := listener.Addr().(*net.TCPAddr)
	return listener, ports.MustNew(addr.Port)
}

func TestConnectScanOpenPort(t *testing.T) {
	listener, port := listenTCP(t)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	scanner := NewConnectScanner(mustIP(t, "127.0.0.1"), time.Second, false)
	res := scanner.ScanPort(context.Background(), port)

	assert.Equal(t, StatusOpen, res.Status)
	assert.Equal(t, port, res.Port)
	require.NotNil(t, res.ResponseTimeMs)
	assert.GreaterOrEqual(t, *res.ResponseTimeMs, int64(0))
}

func TestConnectScanClosedPort(t *testing.T) {
	// Bind a port and close it again so nothing is listening there.
	listener, port := listenTCP(t)
	listener.Close()

	scanner := NewConnectScanner(mustIP(t, "127.0.0.1"), time.Second, false)
	res := scanner.ScanPort(context.Background(), port)

	assert.Equal(t, StatusClosed, res.Status)
	assert.Nil(t, res.ResponseTimeMs)
}

func TestConnectScanGrabsBanner(t *testing.T) {
	listener, port := listenTCP(t)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		fmt.Fprint(conn, "220 test.example.com ESMTP ready\r\n")
		conn.Close()
	}()

	scanner := NewConnectScanner(mustIP(t, "127.0.0.1"), time.Second, true)
	res := scanner.ScanPort(context.Background(), port)

	require.Equal(t, StatusOpen, res.Status)
	assert.Contains(t, res.Banner, "220 test.example.com ESMTP")
}

func TestConnectScanNeverReportsOpenFiltered(t *testing.T) {
	listener, openPort := listenTCP(t)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	closedListener, closedPort := listenTCP(t)
	closedListener.Close()

	scanner := NewConnectScanner(mustIP(t, "127.0.0.1"), 250*time.Millisecond, false)
	for _, port := range []ports.Port{openPort, closedPort} {
		res := scanner.ScanPort(context.Background(), port)
		assert.NotEqual(t, StatusOpenFiltered, res.Status, "port %s", port)
	}
}

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"refused", syscall.ECONNREFUSED, StatusClosed},
		{"host unreachable", syscall.EHOSTUNREACH, StatusFiltered},
		{"network unreachable", syscall.ENETUNREACH, StatusFiltered},
		{"deadline exceeded", context.DeadlineExceeded, StatusFiltered},
		{"i/o timeout", &net.OpError{Op: "dial", Err: timeoutError{}}, StatusFiltered},
		{"other", fmt.Errorf("connection reset"), StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyConnectError(tt.err))
		})
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
