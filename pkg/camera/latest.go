package camera

import (
	"context"
	"image"
	"sync"

	"github.com/avishur/go-fixate/pkg/frame"
)

// Source is the minimal frame producer Latest can wrap.
type Source interface {
	Next(ctx context.Context) (frame.Frame, error)
}

// Latest decouples frame acquisition from processing with a
// single-producer/single-consumer handoff of one frame at a time. The
// consumer always sees the most recent fully-received frame; older
// undelivered frames are dropped, never queued.
type Latest struct {
	src Source

	slot chan frame.Frame
	errc chan error

	startOnce sync.Once
}

// NewLatest wraps src. Start must be called before Next.
func NewLatest(src Source) *Latest {
	return &Latest{
		src:  src,
		slot: make(chan frame.Frame, 1),
		errc: make(chan error, 1),
	}
}

// Start launches the producer goroutine. It stops on the first source
// error (including io.EOF), which is then surfaced by Next.
func (l *Latest) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.produce(ctx)
	})
}

func (l *Latest) produce(ctx context.Context) {
	for {
		f, err := l.src.Next(ctx)
		if err != nil {
			l.errc <- err
			return
		}
		// Replace a stale undelivered frame instead of blocking.
		select {
		case l.slot <- f:
		default:
			select {
			case <-l.slot:
			default:
			}
			select {
			case l.slot <- f:
			default:
			}
		}
	}
}

// Next returns the most recent frame, blocking until one is available,
// the producer fails, or the context is cancelled.
func (l *Latest) Next(ctx context.Context) (frame.Frame, error) {
	select {
	case f := <-l.slot:
		return f, nil
	case err := <-l.errc:
		return frame.Frame{}, err
	case <-ctx.Done():
		return frame.Frame{}, ctx.Err()
	}
}

// centerRect returns a centered rectangle covering fraction of each axis.
func centerRect(w, h int, fraction float64) image.Rectangle {
	cw := int(float64(w) * fraction)
	ch := int(float64(h) * fraction)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x := (w - cw) / 2
	y := (h - ch) / 2
	return image.Rect(x, y, x+cw, y+ch)
}
