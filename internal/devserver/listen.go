package devserver

import (
	stderrors "errors"
	"log/slog"
	"net"
	"strconv"
	"syscall"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

// Listen binds host:port. When the port is in use and strict is set it
// fails with E301; otherwise it tries up to attempts consecutive ports and
// fails with E302 when none is free.
func Listen(host string, port int, strict bool, attempts int, logger *slog.Logger) (net.Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if attempts < 1 {
		attempts = 1
	}
	if strict {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		candidate := port + i
		if candidate > 65535 {
			break
		}
		addr := net.JoinHostPort(host, strconv.Itoa(candidate))

		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if candidate != port {
				logger.Warn("port in use, using fallback", "requested", port, "port", candidate)
			}
			return ln, nil
		}
		if !isAddrInUse(err) {
			return nil, errors.New("E300").WithDetail(err.Error()).Wrap(err)
		}
		lastErr = err

		if strict {
			return nil, errors.New("E301").
				WithDetail("Port " + strconv.Itoa(port) + " on " + host + " is held by another process").
				WithSuggestion(`Stop the other process, pass --port, or set "strictPort": false in ledgerdash.json`).
				Wrap(err)
		}
		logger.Debug("port in use", "port", candidate)
	}

	return nil, errors.New("E302").
		WithDetail("Ports " + strconv.Itoa(port) + "-" + strconv.Itoa(port+attempts-1) + " on " + host + " are all in use").
		WithSuggestion("Free a port or raise dev.portAttempts").
		Wrap(lastErr)
}

func isAddrInUse(err error) bool {
	return stderrors.Is(err, syscall.EADDRINUSE)
}

// listenerPort returns the TCP port ln is bound to.
func listenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
