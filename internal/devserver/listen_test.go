package devserver

import (
	stderrors "errors"
	"net"
	"testing"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

func busyPort(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, listenerPort(ln)
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestListen_Free(t *testing.T) {
	ln, err := Listen("127.0.0.1", 0, true, 1, nil)
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer ln.Close()

	if listenerPort(ln) == 0 {
		t.Error("expected a bound port")
	}
}

func TestListen_StrictPortInUse(t *testing.T) {
	_, port := busyPort(t)

	ln, err := Listen("127.0.0.1", port, true, 10, nil)
	if err == nil {
		ln.Close()
		t.Fatal("Listen() should fail on a busy port in strict mode")
	}
	if code := errorCode(err); code != "E301" {
		t.Errorf("error code = %q, want E301 (%v)", code, err)
	}
}

func TestListen_Fallback(t *testing.T) {
	_, port := busyPort(t)

	ln, err := Listen("127.0.0.1", port, false, 10, nil)
	if err != nil {
		t.Skipf("no free port near %d: %v", port, err)
	}
	defer ln.Close()

	got := listenerPort(ln)
	if got <= port || got >= port+10 {
		t.Errorf("fallback port = %d, want in (%d, %d)", got, port, port+10)
	}
}

func TestListen_NoFreePort(t *testing.T) {
	_, port := busyPort(t)

	ln, err := Listen("127.0.0.1", port, false, 1, nil)
	if err == nil {
		ln.Close()
		t.Fatal("Listen() should fail when every attempt is busy")
	}
	if code := errorCode(err); code != "E302" {
		t.Errorf("error code = %q, want E302 (%v)", code, err)
	}
}

func TestListen_BadHost(t *testing.T) {
	ln, err := Listen("256.0.0.1", 1420, true, 1, nil)
	if err == nil {
		ln.Close()
		t.Fatal("Listen() should fail on an invalid host")
	}
	if code := errorCode(err); code != "E300" {
		t.Errorf("error code = %q, want E300 (%v)", code, err)
	}
}
