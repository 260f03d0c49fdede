package tempfile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Extension is the file extension given to a temporary audio file. It is a
// closed set so that request input can never influence the generated path.
type Extension string

const (
	WAV  Extension = "wav"
	FLAC Extension = "flac"

	Prefix = "soundcloud"

	// idBytes is the number of random bytes in each path (128 bits).
	idBytes = 16
)

// NewPath returns a fresh, unpredictable path inside the system temp
// directory of the form {tmp}/soundcloud-{32 hex chars}.{ext}. The file
// itself is not created.
func NewPath(ext Extension) (string, error) {
	return newPathIn(os.TempDir(), ext)
}

func newPathIn(dir string, ext Extension) (string, error) {
	switch ext {
	case WAV, FLAC:
	default:
		return "", fmt.Errorf("unsupported temp file extension %q", ext)
	}

	id := make([]byte, idBytes)
	if _, err := rand.Read(id); err != nil {
		return "", fmt.Errorf("failed to generate temp file identifier: %w", err)
	}

	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", Prefix, hex.EncodeToString(id), ext)), nil
}
