package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		CodeUnknown,
		CodeConfiguration,
		CodeValidation,
		CodeCanceled,
		CodeTimeout,
		CodeConnectionRefused,
		CodeConnectionFailed,
		CodeHostUnreachable,
		CodeNetworkUnreachable,
		CodePermission,
		CodeRawSocket,
		CodeInvalidPacket,
		CodeInterfaceNotFound,
		CodeUnsupportedTarget,
		CodeTargetInvalid,
		CodeResolutionFailed,
		CodeStorage,
		CodeScanNotFound,
		CodeProfileNotFound,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("Error code %v should not be empty", code)
		}
	}
}

func TestScanError(t *testing.T) {
	t.Run("basic error creation", func(t *testing.T) {
		err := New(CodeTimeout, "probe timed out")
		if err.Code != CodeTimeout {
			t.Errorf("Expected code %s, got %s", CodeTimeout, err.Code)
		}
		if err.Message != "probe timed out" {
			t.Errorf("Expected message 'probe timed out', got '%s'", err.Message)
		}
		if err.Context == nil {
			t.Error("Context should be initialized")
		}
	})

	t.Run("error with target", func(t *testing.T) {
		err := NewWithTarget(CodeHostUnreachable, "host down", "192.168.1.1")
		if err.Target != "192.168.1.1" {
			t.Errorf("Expected target '192.168.1.1', got '%s'", err.Target)
		}
		expected := "[HOST_UNREACHABLE] host down (target: 192.168.1.1)"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("error without target", func(t *testing.T) {
		err := New(CodeValidation, "validation failed")
		expected := "[VALIDATION] validation failed"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("wrapped error", func(t *testing.T) {
		cause := fmt.Errorf("network error")
		err := Wrap(CodeNetworkUnreachable, "network issue", cause)
		if err.Unwrap() != cause {
			t.Error("Unwrap should return the cause")
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the cause in the chain")
		}
	})

	t.Run("formatted message", func(t *testing.T) {
		err := Newf(CodeTargetInvalid, "bad target %q", "10.0.0.999")
		if err.Message != `bad target "10.0.0.999"` {
			t.Errorf("Unexpected message: %s", err.Message)
		}
	})

	t.Run("context accumulation", func(t *testing.T) {
		err := New(CodeRawSocket, "send failed").
			WithContext("port", 443).
			WithContext("interface", "eth0")
		if err.Context["port"] != 443 {
			t.Errorf("Expected port context 443, got %v", err.Context["port"])
		}
		if err.Context["interface"] != "eth0" {
			t.Errorf("Expected interface context eth0, got %v", err.Context["interface"])
		}
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("direct scan error", func(t *testing.T) {
		if code := CodeOf(New(CodePermission, "denied")); code != CodePermission {
			t.Errorf("Expected PERMISSION, got %s", code)
		}
	})

	t.Run("scan error wrapped by fmt", func(t *testing.T) {
		inner := New(CodeInterfaceNotFound, "no such interface")
		wrapped := fmt.Errorf("starting scan: %w", inner)
		if code := CodeOf(wrapped); code != CodeInterfaceNotFound {
			t.Errorf("Expected INTERFACE_NOT_FOUND, got %s", code)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if code := CodeOf(fmt.Errorf("plain")); code != CodeUnknown {
			t.Errorf("Expected UNKNOWN, got %s", code)
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if code := CodeOf(nil); code != CodeUnknown {
			t.Errorf("Expected UNKNOWN for nil, got %s", code)
		}
	})
}

func TestClassifiers(t *testing.T) {
	if !IsPermission(New(CodePermission, "denied")) {
		t.Error("IsPermission should match PERMISSION errors")
	}
	if IsPermission(New(CodeTimeout, "slow")) {
		t.Error("IsPermission should not match TIMEOUT errors")
	}
	if !IsTimeout(New(CodeTimeout, "slow")) {
		t.Error("IsTimeout should match TIMEOUT errors")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []ErrorCode{CodePermission, CodeConfiguration, CodeInterfaceNotFound, CodeUnsupportedTarget}
	for _, code := range fatal {
		if !IsFatal(New(code, "x")) {
			t.Errorf("Code %s should be fatal", code)
		}
	}

	nonFatal := []ErrorCode{CodeTimeout, CodeConnectionRefused, CodeHostUnreachable, CodeStorage}
	for _, code := range nonFatal {
		if IsFatal(New(code, "x")) {
			t.Errorf("Code %s should not be fatal", code)
		}
	}
}

func TestHint(t *testing.T) {
	if hint := Hint(New(CodePermission, "denied")); hint == "" {
		t.Error("Permission errors should carry a hint")
	}
	if hint := Hint(New(CodeTimeout, "slow")); hint != "" {
		t.Errorf("Timeout errors should carry no hint, got %q", hint)
	}
}
