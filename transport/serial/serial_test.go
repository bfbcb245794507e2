//go:build unix

package serial

import "testing"

func TestOpenUnsupportedBaud(t *testing.T) {
	if _, err := Open("/dev/null", 1234); err == nil {
		t.Fatal("expected an error for an unsupported baud rate")
	}
}

func TestOpenMissingDevice(t *testing.T) {
	if _, err := Open("/nonexistent/gorsp-serial-test", 9600); err == nil {
		t.Fatal("expected an error opening a nonexistent device")
	}
}
