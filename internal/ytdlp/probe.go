package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hbomb79/Cadence/internal/sanitize"
	goytdlp "github.com/lrstanley/go-ytdlp"
)

const (
	// ProbeTimeout bounds every metadata-only invocation.
	ProbeTimeout = 30 * time.Second

	DefaultFilename = "soundcloud-audio"
	UnknownArtist   = "Unknown Artist"
	UnknownTitle    = "Unknown Title"
)

type (
	// TrackMetadata is the normalised track information extracted
	// from the tool's JSON dump.
	TrackMetadata struct {
		Artist      string
		Title       string
		Duration    *float64
		Description string
		Thumbnail   string
		Uploader    string
		UploadDate  string

		// Filename is derived from Artist and Title and has already
		// been sanitized. It carries no extension.
		Filename string
	}

	Prober struct {
		runner         Runner
		maxOutputBytes int64
	}
)

func NewProber(runner Runner, maxOutputBytes int64) *Prober {
	return &Prober{runner: runner, maxOutputBytes: maxOutputBytes}
}

// Probe invokes the tool in metadata-only mode and parses the result. Any
// failure (non-zero exit, timeout, unparsable output) is returned.
func (prober *Prober) Probe(ctx context.Context, url string) (*TrackMetadata, error) {
	inv := ProbeInvocation(url)
	inv.Timeout = ProbeTimeout
	inv.MaxOutputBytes = prober.maxOutputBytes

	out, err := prober.runner.Run(ctx, inv)
	if err != nil {
		return nil, err
	}

	var info goytdlp.ExtractedInfo
	if err := json.Unmarshal(bytes.TrimSpace(out.Stdout), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	return toMetadata(&info), nil
}

// ProbeOrDefault behaves like Probe, however failures are logged and a
// degraded record containing only the fallback filename is returned in
// place of an error. Metadata is a nice-to-have for conversions and must
// never block them.
func (prober *Prober) ProbeOrDefault(ctx context.Context, url string) *TrackMetadata {
	meta, err := prober.Probe(ctx, url)
	if err != nil {
		log.Warnf("Failed to get metadata, falling back to default filename: %v\n", err)
		return &TrackMetadata{Filename: DefaultFilename}
	}

	return meta
}

// ProbeInvocation returns the metadata-only invocation for url. Nothing
// is downloaded; the track's info document is written to stdout.
func ProbeInvocation(url string) Invocation {
	return Invocation{
		Command: goytdlp.New().DumpJSON().SkipDownload(),
		Args:    targetArgs(url),
	}
}

func toMetadata(info *goytdlp.ExtractedInfo) *TrackMetadata {
	uploader := deref(info.Uploader)
	artist := firstNonEmpty(uploader, deref(info.Artist), UnknownArtist)
	title := firstNonEmpty(deref(info.Title), UnknownTitle)

	return &TrackMetadata{
		Artist:      artist,
		Title:       title,
		Duration:    info.Duration,
		Description: deref(info.Description),
		Thumbnail:   deref(info.Thumbnail),
		Uploader:    uploader,
		UploadDate:  deref(info.UploadDate),
		Filename:    sanitize.Filename(fmt.Sprintf("%s - %s", artist, title)),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
