// Package wpactrl implements the WLAN adapter over a supplicant-style
// control socket.
//
// The protocol is line oriented: one command per line, replies are one or
// more lines terminated by an empty line. Command replies are either
// "OK", "FAIL <TOKEN>", or key=value data lines. FAIL tokens run through
// the wpactrl driver error table.
package wpactrl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlan-control/wland/internal/adapter"
)

const driverName = "wpactrl"

// defaultDialTimeout bounds connection establishment when the caller's
// context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// Adapter talks to a control socket over unix or tcp. One connection is
// held open and re-established after IO errors; commands are serialized.
type Adapter struct {
	adapter.Base

	network     string
	addr        string
	dialTimeout time.Duration
	log         zerolog.Logger

	mu   sync.Mutex
	conn net.Conn
	br   *bufio.Reader
}

// Compile-time assertion that Adapter implements the southbound contract.
var _ adapter.WlanAdapter = (*Adapter)(nil)

// New creates an adapter for the control socket at controlAddr, which
// must use a unix:// or tcp:// scheme.
func New(controlAddr, iface string, log zerolog.Logger) (*Adapter, error) {
	network, addr, err := parseControlAddr(controlAddr)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		Base: adapter.Base{
			Interface: iface,
			Driver:    driverName,
			Status:    "online",
		},
		network:     network,
		addr:        addr,
		dialTimeout: defaultDialTimeout,
		log:         log,
	}, nil
}

// LinkStats issues SIGNAL_POLL and parses the key=value reply.
func (a *Adapter) LinkStats(ctx context.Context) (*adapter.LinkStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := a.command(ctx, "SIGNAL_POLL")
	if err != nil {
		return nil, err
	}

	stats := &adapter.LinkStats{}
	seenRssi := false
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "RSSI":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, a.malformed("SIGNAL_POLL", line, err)
			}
			stats.RssiDbm = v
			seenRssi = true
		case "LINKSPEED":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, a.malformed("SIGNAL_POLL", line, err)
			}
			stats.LinkSpeedMbps = v
		case "FREQUENCY":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, a.malformed("SIGNAL_POLL", line, err)
			}
			stats.FrequencyMhz = v
		case "BSSID":
			stats.BSSID = value
		}
	}
	if !seenRssi {
		return nil, a.malformed("SIGNAL_POLL", "missing RSSI", nil)
	}

	return stats, nil
}

// Disconnect issues DISCONNECT with the reason attached for driver logs.
func (a *Adapter) Disconnect(ctx context.Context, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reason = strings.ReplaceAll(reason, "\n", " ")
	_, err := a.command(ctx, fmt.Sprintf("DISCONNECT reason=%s", reason))
	return err
}

// SetRadioEnabled issues RADIO_ON or RADIO_OFF.
func (a *Adapter) SetRadioEnabled(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := "RADIO_OFF"
	if enabled {
		cmd = "RADIO_ON"
	}
	_, err := a.command(ctx, cmd)
	return err
}

// Close drops the control connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropConn()
}

// command sends one command and reads the reply block. A nil line slice
// with a nil error means the reply was a bare OK.
func (a *Adapter) command(ctx context.Context, cmd string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(ctx); err != nil {
		return nil, adapter.NormalizeDriverErrorFor(driverName,
			fmt.Errorf("SOCKET_CLOSED: dial %s %s: %w", a.network, a.addr, err), nil)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = a.conn.SetDeadline(deadline)
	} else {
		_ = a.conn.SetDeadline(time.Time{})
	}

	if _, err := fmt.Fprintf(a.conn, "%s\n", cmd); err != nil {
		_ = a.dropConn()
		return nil, a.ioError("write", cmd, err)
	}

	var lines []string
	for {
		raw, err := a.br.ReadString('\n')
		if err != nil {
			_ = a.dropConn()
			return nil, a.ioError("read", cmd, err)
		}
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		_ = a.dropConn()
		return nil, adapter.NormalizeDriverErrorFor(driverName,
			fmt.Errorf("SOCKET_CLOSED: empty reply"), commandDetails(cmd))
	}

	if lines[0] == "OK" {
		return nil, nil
	}
	if token, ok := strings.CutPrefix(lines[0], "FAIL"); ok {
		token = strings.TrimSpace(token)
		if token == "" {
			token = "FAIL"
		}
		// Only the token reaches the normalizer; echoing the command here
		// could collide with the token tables.
		return nil, adapter.NormalizeDriverErrorFor(driverName,
			fmt.Errorf("command failed: %s", token), commandDetails(cmd))
	}

	return lines, nil
}

// commandDetails carries the failing command as diagnostic payload.
func commandDetails(cmd string) map[string]interface{} {
	return map[string]interface{}{"command": cmd}
}

// ensureConn dials the control socket if no connection is held.
// Callers hold a.mu.
func (a *Adapter) ensureConn(ctx context.Context) error {
	if a.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: a.dialTimeout}
	conn, err := dialer.DialContext(ctx, a.network, a.addr)
	if err != nil {
		return err
	}

	a.conn = conn
	a.br = bufio.NewReader(conn)
	a.log.Debug().Str("addr", a.addr).Msg("control socket connected")
	return nil
}

// dropConn closes and forgets the connection. Callers hold a.mu.
func (a *Adapter) dropConn() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	a.br = nil
	return err
}

// ioError classifies transport failures: deadline expiry becomes
// CTRL_TIMEOUT, everything else SOCKET_CLOSED.
func (a *Adapter) ioError(op, cmd string, err error) error {
	token := "SOCKET_CLOSED"
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		token = "CTRL_TIMEOUT"
	}
	return adapter.NormalizeDriverErrorFor(driverName,
		fmt.Errorf("%s: %s: %w", token, op, err), commandDetails(cmd))
}

// malformed reports a protocol violation in a data reply. The offending
// line stays out of the normalized error so reply text cannot collide
// with the token tables.
func (a *Adapter) malformed(cmd, line string, err error) error {
	a.log.Warn().Str("cmd", cmd).Str("line", line).Msg("malformed control reply")
	cause := fmt.Errorf("malformed %s reply", cmd)
	if err != nil {
		cause = fmt.Errorf("malformed %s reply: %v", cmd, err)
	}
	return adapter.NormalizeDriverErrorFor(driverName, cause, commandDetails(cmd))
}

// parseControlAddr splits a unix:// or tcp:// control address.
func parseControlAddr(raw string) (network, addr string, err error) {
	switch {
	case strings.HasPrefix(raw, "unix://"):
		return "unix", strings.TrimPrefix(raw, "unix://"), nil
	case strings.HasPrefix(raw, "tcp://"):
		return "tcp", strings.TrimPrefix(raw, "tcp://"), nil
	default:
		return "", "", fmt.Errorf("control address %q must use a unix:// or tcp:// scheme", raw)
	}
}
