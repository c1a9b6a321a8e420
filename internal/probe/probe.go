package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// MPMPort is the management daemon's RPC port on networked USRPs.
const MPMPort = 49601

const retryInterval = 500 * time.Millisecond

// WaitReachable dials host:port until a TCP connection succeeds, timeout
// passes or ctx is done.
func WaitReachable(ctx context.Context, host string, port int, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	var lastErr error
	for {
		attempt, cancelAttempt := context.WithTimeout(ctx, time.Second)
		conn, err := d.DialContext(attempt, "tcp", addr)
		cancelAttempt()
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not reachable within %s: %w (last dial error: %v)", addr, timeout, ctx.Err(), lastErr)
		case <-time.After(retryInterval):
		}
	}
}
