package monitoring

import (
	"errors"
	"fmt"
	"testing"
)

func TestMonitoringErrorTypes(t *testing.T) {
	sensor := NewSensorError("cpu_info", "probe failed", errors.New("no such device"))
	system := NewSystemError("host_info", "lookup failed", nil)
	timeout := NewTimeoutError("disk_usage", "deadline exceeded")

	if !IsErrorType(sensor, ErrTypeSensor) {
		t.Error("sensor error not recognized")
	}
	if !IsSystemError(system) || IsSystemError(sensor) {
		t.Error("system error misclassified")
	}
	if !IsTimeout(timeout) || IsTimeout(system) {
		t.Error("timeout error misclassified")
	}
}

func TestMonitoringErrorWrapping(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewSensorError("disk_usage", "probe failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}

	wrapped := fmt.Errorf("collect: %w", err)
	if !IsErrorType(wrapped, ErrTypeSensor) {
		t.Error("errors.As must see through wrapping")
	}

	if IsErrorType(errors.New("plain"), ErrTypeSensor) {
		t.Error("plain errors carry no type")
	}
}

func TestMonitoringErrorMessage(t *testing.T) {
	withCause := NewSystemError("host_info", "lookup failed", errors.New("boom"))
	if withCause.Error() != "system_error: host_info failed: boom" {
		t.Errorf("message = %q", withCause.Error())
	}

	bare := NewTimeoutError("disk_usage", "deadline exceeded")
	if bare.Error() != "timeout_error: disk_usage failed: deadline exceeded" {
		t.Errorf("message = %q", bare.Error())
	}
}
