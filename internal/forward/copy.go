package forward

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// CopyBidirectional relays between left and right until both directions end
// or ctx is done, then closes both.
//
// When one direction reaches EOF the write half of its destination is closed
// if possible, so half-closed protocols still finish. A copy error closes
// both sides.
func CopyBidirectional(ctx context.Context, left, right net.Conn, ioTimeout time.Duration) error {
	if ioTimeout > 0 {
		dl := time.Now().Add(ioTimeout)
		_ = left.SetDeadline(dl)
		_ = right.SetDeadline(dl)
	}

	var (
		closeOnce sync.Once
		closed    atomic.Bool
	)
	closeBoth := func() {
		closeOnce.Do(func() {
			closed.Store(true)
			_ = left.Close()
			_ = right.Close()
		})
	}
	defer closeBoth()

	stop := context.AfterFunc(ctx, closeBoth)
	defer stop()

	var g errgroup.Group
	relay := func(dst, src net.Conn) {
		g.Go(func() error {
			_, err := io.Copy(dst, src)
			if err != nil && closed.Load() {
				// Our own close unblocked the copy.
				err = nil
			}
			if err != nil || !closeWrite(dst) {
				closeBoth()
			}
			return err
		})
	}
	relay(left, right)
	relay(right, left)

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func closeWrite(c net.Conn) bool {
	cw, ok := c.(interface{ CloseWrite() error })
	if !ok {
		return false
	}
	return cw.CloseWrite() == nil
}
