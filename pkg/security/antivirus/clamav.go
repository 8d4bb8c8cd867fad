package antivirus

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ClamAV talks to a clamd daemon over TCP ("host:3310") or a unix socket path.
type ClamAV struct {
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAV)(nil)

func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAV{address: address, timeout: timeout}
}

func (c *ClamAV) Name() string { return "clamav" }

func (c *ClamAV) dial(ctx context.Context) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, fmt.Errorf("connect to clamd: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping reports whether clamd answers.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("clamd ping: %w", err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("clamd ping: %w", err)
	}
	if reply != "PONG" {
		return fmt.Errorf("clamd ping: unexpected reply %q", reply)
	}
	return nil
}

// Scan streams data with INSTREAM as a single chunk.
func (c *ClamAV) Scan(ctx context.Context, data []byte) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var msg bytes.Buffer
	msg.WriteString("zINSTREAM\x00")
	_ = binary.Write(&msg, binary.BigEndian, uint32(len(data)))
	msg.Write(data)
	_ = binary.Write(&msg, binary.BigEndian, uint32(0))
	if _, err := conn.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}
	return parseReply(c.Name(), reply)
}

func readReply(r io.Reader) (string, error) {
	buf, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil && len(buf) == 0 {
		return "", err
	}
	return strings.TrimSpace(strings.TrimRight(string(buf), "\x00")), nil
}

// parseReply reads "stream: OK", "stream: <name> FOUND" or "... ERROR".
func parseReply(scanner, reply string) error {
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}
	switch {
	case body == "OK":
		return nil
	case strings.HasSuffix(body, " FOUND"):
		return &ThreatError{Scanner: scanner, Threat: strings.TrimSuffix(body, " FOUND")}
	default:
		return fmt.Errorf("clamd scan: %s", reply)
	}
}
