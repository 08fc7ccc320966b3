package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"imgpaste/src/messages"
)

type tcpClient struct {
	rng Range
}

func newTcpClient(r Range) Client { return &tcpClient{rng: r.Normalize()} }

func (c *tcpClient) TryRunOnce(ctx context.Context, outputToStdout bool) (bool, string, error) {
	line := clipRequest
	if outputToStdout {
		line = stdoutRequest
	}
	return c.delegate(ctx, line)
}

func (c *tcpClient) SendTrigger(ctx context.Context, kind messages.Kind) (bool, error) {
	delegated, _, err := c.delegate(ctx, triggerPrefix+string(kind)+"\n")
	return delegated, err
}

// delegate finds the resident with PING, sends line and waits for the
// SUCCESS or ERROR status. The wait for the answer is bounded only by ctx.
func (c *tcpClient) delegate(ctx context.Context, line string) (bool, string, error) {
	dialTimeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < dialTimeout {
			dialTimeout = d
		}
	}
	for port := c.rng.Start; port <= c.rng.End; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, dialTimeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			continue
		}
		text, err := exchange(ctx, conn, line)
		return true, text, err
	}
	return false, "", nil
}

func exchange(ctx context.Context, conn net.Conn, line string) (string, error) {
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(line); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successResponse:
		return string(body), nil
	case errorResponse:
		return "", errors.New(string(body))
	default:
		return "", errors.New("unexpected response from resident: " + status)
	}
}
