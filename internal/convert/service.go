package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/hbomb79/Cadence/internal/source"
	"github.com/hbomb79/Cadence/internal/tempfile"
	"github.com/hbomb79/Cadence/internal/ytdlp"
	"github.com/hbomb79/Cadence/pkg/logger"
	"github.com/hbomb79/Cadence/pkg/sync"
)

var log = logger.Get("ConvertServ")

type Format string

const (
	WAV  Format = "wav"
	FLAC Format = "flac"

	// DefaultWAVFilename is the fixed download name for WAV conversions;
	// unlike FLAC, they are never named after the track.
	DefaultWAVFilename = ytdlp.DefaultFilename + ".wav"
)

var errEmptyOutput = errors.New("output file is empty")

type (
	formatSpec struct {
		extension    tempfile.Extension
		audioFormat  ytdlp.AudioFormat
		contentType  string
		withMetadata bool
	}

	// Service orchestrates conversions: validating the request, invoking
	// yt-dlp, verifying its output and handing it back as an Artifact.
	// Every temporary file the Service creates is deleted exactly once,
	// regardless of how the request ends.
	Service struct {
		config *Config
		binary string
		runner ytdlp.Runner
		prober *ytdlp.Prober

		// inFlight holds the temp path of every request currently between
		// invocation and artifact release.
		inFlight sync.TypedSyncMap[uuid.UUID, string]

		newPath func(tempfile.Extension) (string, error)
		stat    func(string) (os.FileInfo, error)
		open    func(string) (io.ReadCloser, error)
		remove  func(string) error
	}
)

var formats = map[Format]formatSpec{
	WAV:  {extension: tempfile.WAV, audioFormat: ytdlp.WAV, contentType: "audio/wav", withMetadata: false},
	FLAC: {extension: tempfile.FLAC, audioFormat: ytdlp.FLAC, contentType: "audio/flac", withMetadata: true},
}

// New creates a conversion Service which runs the tool using the runner
// provided. The tool config is used only to recognise failures caused by
// the binary being missing.
func New(config *Config, tool ytdlp.Config, runner ytdlp.Runner) *Service {
	return &Service{
		config:  config,
		binary:  filepath.Base(tool.Binary()),
		runner:  runner,
		prober:  ytdlp.NewProber(runner, config.MaxOutputBytes()),
		newPath: tempfile.NewPath,
		stat:    os.Stat,
		open:    func(path string) (io.ReadCloser, error) { return os.Open(path) },
		remove:  os.Remove,
	}
}

// Run blocks until the context is cancelled, after which any temporary
// files still owned by in-flight conversions are removed.
func (service *Service) Run(ctx context.Context) error {
	<-ctx.Done()

	swept := 0
	service.inFlight.Range(func(id uuid.UUID, _ string) bool {
		if service.discard(id) {
			swept++
		}
		return true
	})

	if swept > 0 {
		log.Warnf("Removed %d temporary file(s) belonging to in-flight conversions during shutdown\n", swept)
	}

	return nil
}

// ActiveConversions returns the number of conversions currently holding
// a temporary file.
func (service *Service) ActiveConversions() int {
	return service.inFlight.Len()
}

// Convert downloads the track at rawURL and transcodes it to the format
// requested. On success, the returned Artifact must be closed by the caller
// (which deletes the file). On failure a *Error is returned and no file
// is left behind.
func (service *Service) Convert(ctx context.Context, rawURL string, format Format) (artifact *Artifact, err error) {
	spec, ok := formats[format]
	if !ok {
		return nil, newError(InternalError, MsgInternal, fmt.Errorf("unsupported conversion format %q", format))
	}

	req := newTracker()

	// tempPath is set once a path has been generated; from that point on
	// every failure (including a panic) must remove whatever is there.
	var tempPath string
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Conversion %s panicked: %v\n%s\n", req.id, r, debug.Stack())
			artifact, err = nil, newError(InternalError, MsgInternal, fmt.Errorf("panic: %v", r))
		}

		if err != nil {
			var convErr *Error
			if errors.As(err, &convErr) && convErr.Kind == BadRequest {
				log.Warnf("Conversion %s rejected: %v\n", req.id, err)
			} else {
				log.Errorf("Conversion %s failed: %v\n", req.id, err)
			}

			req.transition(Failed)
			if tempPath != "" {
				service.discard(req.id)
			}
		}
	}()

	req.transition(Validating)
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	filename := DefaultWAVFilename
	if spec.withMetadata {
		req.transition(ProbingMetadata)
		meta := service.prober.ProbeOrDefault(ctx, rawURL)
		filename = fmt.Sprintf("%s.%s", meta.Filename, spec.extension)
	}

	path, err := service.newPath(spec.extension)
	if err != nil {
		return nil, newError(InternalError, MsgInternal, err)
	}
	tempPath = path
	service.inFlight.Store(req.id, tempPath)

	req.transition(Invoking)
	inv := ytdlp.ExtractInvocation(spec.audioFormat, tempPath, rawURL)
	inv.Timeout = service.config.Timeout()
	inv.MaxOutputBytes = service.config.MaxOutputBytes()
	if _, err := service.runner.Run(ctx, inv); err != nil {
		if ytdlp.IsToolMissing(err, service.binary) {
			return nil, newError(ToolNotInstalled, MsgToolNotInstalled, err)
		}

		return nil, newError(ConversionFailed, MsgConversionFailed, err)
	}

	req.transition(Verifying)
	info, err := service.stat(tempPath)
	if err != nil {
		return nil, newError(OutputEmpty, MsgOutputEmpty, err)
	} else if info.Size() == 0 {
		return nil, newError(OutputEmpty, MsgOutputEmpty, errEmptyOutput)
	}

	file, err := service.open(tempPath)
	if err != nil {
		return nil, newError(InternalError, MsgInternal, err)
	}

	req.transition(Streaming)
	id := req.id
	return &Artifact{
		Filename:    filename,
		ContentType: spec.contentType,
		Size:        info.Size(),
		file:        file,
		tracker:     req,
		discard:     func() { service.discard(id) },
	}, nil
}

// Metadata probes the track at rawURL. Unlike the probe performed during a
// FLAC conversion, failure here is reported to the caller.
func (service *Service) Metadata(ctx context.Context, rawURL string) (*ytdlp.TrackMetadata, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	meta, err := service.prober.Probe(ctx, rawURL)
	if err != nil {
		log.Errorf("Metadata probe failed: %v\n", err)
		if ytdlp.IsToolMissing(err, service.binary) {
			return nil, newError(ToolNotInstalled, MsgToolNotInstalled, err)
		}

		return nil, newError(ProbeFailed, MsgProbeFailed, err)
	}

	return meta, nil
}

// discard claims the temporary file registered for the conversion and
// deletes it. Whichever caller claims the path first (the request itself
// or the shutdown sweep) is the only one to delete it; later callers find
// nothing registered and return false. A file that does not exist is not
// an error, and any other failure is logged rather than returned as it
// must never mask the outcome of the request.
func (service *Service) discard(id uuid.UUID) bool {
	path, claimed := service.inFlight.LoadAndDelete(id)
	if !claimed {
		return false
	}

	if err := service.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Conversion %s failed to remove temporary file %s: %v\n", id, path, err)
		return true
	}

	log.Verbosef("Conversion %s removed temporary file %s\n", id, path)
	return true
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return ErrURLRequired(nil)
	}

	if !source.IsSupportedURL(rawURL) {
		return newError(BadRequest, MsgInvalidURL, nil)
	}

	return nil
}
