package convert

import (
	"io"
	"sync"

	"github.com/labstack/gommon/bytes"
)

// Artifact is a verified, opened audio file ready to be streamed to a
// caller. The caller MUST call Close (or Finish) once it is done with the
// artifact, however that happens: it closes the file and deletes it from
// disk. Both are safe to call more than once; only the first call does
// anything.
type Artifact struct {
	Filename    string
	ContentType string
	Size        int64

	file    io.ReadCloser
	tracker *tracker
	discard func()
	once    sync.Once
}

func (artifact *Artifact) Read(p []byte) (int, error) {
	return artifact.file.Read(p)
}

// Finish records the outcome of streaming the artifact and releases it.
// A nil error marks the conversion Completed, anything else Failed.
func (artifact *Artifact) Finish(streamErr error) {
	artifact.release(streamErr)
}

// Close releases the artifact. When called without a prior Finish the
// stream is assumed to have completed successfully.
func (artifact *Artifact) Close() error {
	artifact.release(nil)
	return nil
}

func (artifact *Artifact) release(streamErr error) {
	artifact.once.Do(func() {
		if err := artifact.file.Close(); err != nil {
			log.Warnf("Conversion %s failed to close output file: %v\n", artifact.tracker.id, err)
		}

		artifact.discard()

		if streamErr != nil {
			log.Warnf("Conversion %s stream ended early: %v\n", artifact.tracker.id, streamErr)
			artifact.tracker.transition(Failed)
		} else {
			log.Successf("Conversion %s delivered %s\n", artifact.tracker.id, bytes.Format(artifact.Size))
			artifact.tracker.transition(Completed)
		}
	})
}
