// Package frame defines the image sample passed through the perception loop.
package frame

import (
	"errors"
	"time"
)

// ErrEmpty indicates a frame with no image data.
var ErrEmpty = errors.New("frame: empty frame")

// Frame is a single camera sample. The sequence number increases
// monotonically for the lifetime of the source. Frames are read-only
// downstream and are not retained by the loop after the tick ends.
type Frame struct {
	Seq    uint64
	Time   time.Time
	JPEG   []byte
	Width  int
	Height int
}

// Empty reports whether the frame carries no usable image data.
func (f Frame) Empty() bool {
	return len(f.JPEG) == 0 || f.Width <= 0 || f.Height <= 0
}

// Validate returns ErrEmpty for frames that cannot be processed.
func (f Frame) Validate() error {
	if f.Empty() {
		return ErrEmpty
	}
	return nil
}
