package banner

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/Scuttle/internal/ports"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text unchanged", "SSH-2.0-OpenSSH_9.6", "SSH-2.0-OpenSSH_9.6"},
		{"crlf becomes space", "220 mail.example.com\r\nESMTP", "220 mail.example.com ESMTP"},
		{"control bytes dotted", "abc\x00\x01def", "abc..def"},
		{"whitespace collapsed", "a  \t\t  b", "a b"},
		{"trimmed", "  hello  ", "hello"},
		{"high bytes dotted", "caf\xc3\xa9", "caf.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize([]byte(tt.input)))
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("x", 1000)
	got := sanitize([]byte(long))
	assert.Len(t, got, 256)
}

func TestIsHTTPPort(t *testing.T) {
	assert.True(t, IsHTTPPort(ports.MustNew(80)))
	assert.True(t, IsHTTPPort(ports.MustNew(8443)))
	assert.False(t, IsHTTPPort(ports.MustNew(22)))
	assert.False(t, IsHTTPPort(ports.MustNew(5432)))
}

func TestGrabVolunteeredBanner(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = server.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
	}()

	got := Grab(client, ports.MustNew(22))
	assert.Equal(t, "SSH-2.0-OpenSSH_9.6", got)
}

func TestGrabHTTPProbe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// The service says nothing until probed, like a web server.
	go func() {
		buf := make([]byte, 64)
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		if strings.HasPrefix(string(buf[:n]), "HEAD / HTTP/1.0") {
			_, _ = server.Write([]byte("HTTP/1.0 200 OK\r\nServer: nginx\r\n\r\n"))
		}
	}()

	got := Grab(client, ports.MustNew(80))
	require.NotEmpty(t, got)
	assert.Contains(t, got, "HTTP/1.0 200 OK")
	assert.Contains(t, got, "nginx")
}

func TestGrabSilentNonHTTPPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		// Hold the connection open without writing anything.
		defer conn.Close()
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// Non-HTTP port and a mute service: no banner.
	got := Grab(conn, ports.MustNew(5432))
	assert.Empty(t, got)
}
