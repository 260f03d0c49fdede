package tempfile

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pathPattern = regexp.MustCompile(`^soundcloud-[0-9a-f]{32}\.(wav|flac)$`)

func Test_NewPath_Format(t *testing.T) {
	for _, ext := range []Extension{WAV, FLAC} {
		t.Run(string(ext), func(t *testing.T) {
			path, err := NewPath(ext)
			require.NoError(t, err)

			assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(path))
			assert.Regexp(t, pathPattern, filepath.Base(path))
			assert.Equal(t, "."+string(ext), filepath.Ext(path))

			_, err = os.Stat(path)
			assert.ErrorIs(t, err, os.ErrNotExist, "NewPath must not create the file")
		})
	}
}

func Test_NewPath_RejectsUnknownExtension(t *testing.T) {
	for _, ext := range []Extension{"", "mp3", "wav/../../etc/passwd"} {
		path, err := newPathIn(t.TempDir(), ext)
		assert.Error(t, err)
		assert.Empty(t, path)
	}
}

func Test_NewPath_ConcurrentCallsDoNotCollide(t *testing.T) {
	const workers, perWorker = 16, 256

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				path, err := NewPath(FLAC)
				assert.NoError(t, err)

				mu.Lock()
				seen[path] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
