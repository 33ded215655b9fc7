package source

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Throttle limits the read bandwidth of every stream it opens.
//
// All streams share one token bucket of bytes per second. A Read asks for at
// most one burst at a time, so it may return fewer bytes than requested.
type Throttle struct {
	opener  Opener
	limiter *rate.Limiter
}

// NewThrottle wraps opener with a shared limit of bytesPerSec. A
// non-positive limit disables throttling.
func NewThrottle(opener Opener, bytesPerSec int) *Throttle {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &Throttle{opener: opener, limiter: limiter}
}

// Open implements Opener. ctx bounds every wait of the returned stream.
func (t *Throttle) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	r, err := t.opener.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttled{ReadSeekCloser: r, ctx: ctx, limiter: t.limiter}, nil
}

type throttled struct {
	io.ReadSeekCloser
	ctx     context.Context
	limiter *rate.Limiter
}

func (t *throttled) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return t.ReadSeekCloser.Read(p)
	}
	if burst := t.limiter.Burst(); burst > 0 && len(p) > burst {
		p = p[:burst]
	}
	if err := t.limiter.WaitN(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.ReadSeekCloser.Read(p)
}
