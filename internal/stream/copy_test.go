package stream_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"testing/iotest"

	"github.com/hbomb79/Cadence/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExpected = errors.New("test: expected error")

func randomBytes(t *testing.T, n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func Test_Copy_ForwardsEverything(t *testing.T) {
	payload := randomBytes(t, 5*1024*1024+123)
	rec := httptest.NewRecorder()

	n, err := stream.Copy(context.Background(), rec, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.True(t, bytes.Equal(payload, rec.Body.Bytes()))
	assert.True(t, rec.Flushed)
}

func Test_Copy_EmptySource(t *testing.T) {
	buf := &bytes.Buffer{}
	n, err := stream.Copy(context.Background(), buf, bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func Test_Copy_SourceError(t *testing.T) {
	payload := randomBytes(t, stream.ChunkSize*2)
	src := io.MultiReader(bytes.NewReader(payload), iotest.ErrReader(errExpected))
	buf := &bytes.Buffer{}

	n, err := stream.Copy(context.Background(), buf, src)
	assert.ErrorIs(t, err, stream.ErrSourceFailed)
	assert.ErrorIs(t, err, errExpected)
	assert.Equal(t, int64(len(payload)), n, "data read before the failure is still forwarded")
}

func Test_Copy_DestinationError(t *testing.T) {
	payload := randomBytes(t, stream.ChunkSize*4)
	dst := &failingWriter{failAfter: 1}

	n, err := stream.Copy(context.Background(), dst, bytes.NewReader(payload))
	assert.ErrorIs(t, err, errExpected)
	assert.NotErrorIs(t, err, stream.ErrSourceFailed)
	assert.Equal(t, int64(stream.ChunkSize), n)
}

func Test_Copy_StopsOnCancellation(t *testing.T) {
	payload := randomBytes(t, stream.ChunkSize*8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Simulates a client going away after receiving the first chunk
	dst := &callbackWriter{onWrite: cancel}
	src := &countingReader{r: bytes.NewReader(payload)}

	n, err := stream.Copy(ctx, dst, src)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(stream.ChunkSize), n)
	assert.Equal(t, 1, src.reads, "no further reads may happen after cancellation")
}

// Every chunk read must be written before the next read begins, ensuring
// the adapter never buffers ahead of the destination.
func Test_Copy_AppliesBackpressure(t *testing.T) {
	payload := randomBytes(t, stream.ChunkSize*10+7)
	tracker := &backpressureTracker{t: t}
	tracker.src = bytes.NewReader(payload)

	n, err := stream.Copy(context.Background(), tracker, tracker)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.LessOrEqual(t, tracker.maxOutstanding, stream.ChunkSize)
}

type failingWriter struct {
	writes    int
	failAfter int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.failAfter {
		return 0, errExpected
	}
	w.writes++
	return len(p), nil
}

type callbackWriter struct {
	onWrite func()
}

func (w *callbackWriter) Write(p []byte) (int, error) {
	w.onWrite()
	return len(p), nil
}

type countingReader struct {
	r     io.Reader
	reads int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return r.r.Read(p)
}

type backpressureTracker struct {
	t              *testing.T
	src            io.Reader
	read, written  int
	maxOutstanding int
}

func (b *backpressureTracker) Read(p []byte) (int, error) {
	assert.Equal(b.t, b.read, b.written, "read requested before previous chunk was written")
	n, err := b.src.Read(p)
	b.read += n
	if out := b.read - b.written; out > b.maxOutstanding {
		b.maxOutstanding = out
	}
	return n, err
}

func (b *backpressureTracker) Write(p []byte) (int, error) {
	b.written += len(p)
	return len(p), nil
}
