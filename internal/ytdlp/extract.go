package ytdlp

import (
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	goytdlp "github.com/lrstanley/go-ytdlp"
)

type AudioFormat string

const (
	WAV  AudioFormat = "wav"
	FLAC AudioFormat = "flac"
)

// ExtractInvocation returns the invocation that downloads the track at url
// and transcodes it to the audio format given, writing the result to
// outputPath. FLAC output additionally has tags and cover art embedded.
func ExtractInvocation(format AudioFormat, outputPath string, url string) Invocation {
	cmd := goytdlp.New().
		ExtractAudio().
		AudioFormat(string(format)).
		Output(outputPath)

	if format == FLAC {
		cmd.EmbedMetadata().EmbedThumbnail()
	}

	return Invocation{Command: cmd, Args: targetArgs(url)}
}

// targetArgs places the URL after an end-of-options marker.
func targetArgs(url string) []string {
	return []string{"--", url}
}

// IsToolMissing makes a best-effort guess at whether err was caused by the
// yt-dlp executable being unavailable rather than by yt-dlp failing. A
// failed exec lookup is conclusive. Beyond that it falls back to looking for
// the binary name next to "not found" in the error text, which is a
// heuristic and can misclassify.
func IsToolMissing(err error, binary string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}

	// The tool ran (or was killed by us), so it is clearly installed.
	var exitErr *ExitError
	if errors.As(err, &exitErr) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrOutputLimit) {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, strings.ToLower(binary)) &&
		(strings.Contains(msg, "not found") || strings.Contains(msg, "no such file"))
}
