package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ChunkSize is the size of each read from the source. At most one chunk
// is held in memory at any time.
const ChunkSize = 32 * 1024

// ErrSourceFailed wraps errors raised while reading from the source, as
// opposed to errors writing to the destination.
var ErrSourceFailed = errors.New("stream source failed")

// Copy forwards src to dst one chunk at a time until src is exhausted, then
// returns the number of bytes written and a nil error.
//
// Each chunk is written (and flushed, if dst is an http.Flusher) before the
// next is read, so a slow destination naturally slows reading from the
// source. The context is checked between chunks; if it is cancelled (e.g.
// the client disconnected) the copy stops with the context's error. A
// failed read yields an error wrapping ErrSourceFailed; a failed write is
// returned as-is. In every non-nil case the destination will have received
// a truncated body.
//
// Copy does not close src. Releasing the source is the caller's job and
// must happen regardless of the outcome.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	flusher, _ := dst.(http.Flusher)
	buf := make([]byte, ChunkSize)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if readErr == io.EOF {
			return written, nil
		} else if readErr != nil {
			return written, fmt.Errorf("%w: %w", ErrSourceFailed, readErr)
		}
	}
}
