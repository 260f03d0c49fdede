package conversions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Cadence/internal/api/util"
	"github.com/hbomb79/Cadence/internal/convert"
	"github.com/hbomb79/Cadence/internal/stream"
	"github.com/hbomb79/Cadence/internal/ytdlp"
	"github.com/hbomb79/Cadence/pkg/logger"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("ConvertAPI")

type (
	Service interface {
		Convert(ctx context.Context, rawURL string, format convert.Format) (*convert.Artifact, error)
		Metadata(ctx context.Context, rawURL string) (*ytdlp.TrackMetadata, error)
	}

	Controller struct {
		validate *validator.Validate
		service  Service
	}
)

func New(validate *validator.Validate, service Service) *Controller {
	return &Controller{validate: validate, service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/convert/", controller.convert(convert.WAV))
	eg.OPTIONS("/convert/", util.Preflight)

	eg.POST("/convert-flac/", controller.convert(convert.FLAC))
	eg.OPTIONS("/convert-flac/", util.Preflight)

	eg.POST("/metadata/", controller.metadata)
	eg.OPTIONS("/metadata/", util.Preflight)
}

// convert returns a handler which converts the track named in the request
// body to the format given, and streams the resulting file back as an
// attachment. Once the response headers are written, failures can no longer
// be reported to the caller; the body is simply truncated.
func (controller *Controller) convert(format convert.Format) echo.HandlerFunc {
	return func(ec echo.Context) error {
		url, err := controller.decodeURL(ec)
		if err != nil {
			return err
		}

		ctx := ec.Request().Context()
		artifact, err := controller.service.Convert(ctx, url, format)
		if err != nil {
			return err
		}
		defer artifact.Close()

		header := ec.Response().Header()
		header.Set(echo.HeaderContentType, artifact.ContentType)
		header.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
		header.Set(echo.HeaderContentLength, strconv.FormatInt(artifact.Size, 10))
		ec.Response().WriteHeader(http.StatusOK)

		written, err := stream.Copy(ctx, ec.Response(), artifact)
		if err != nil {
			log.Warnf("Streaming %s aborted after %d of %d bytes: %v\n", format, written, artifact.Size, err)
		}

		artifact.Finish(err)
		return nil
	}
}

func (controller *Controller) metadata(ec echo.Context) error {
	url, err := controller.decodeURL(ec)
	if err != nil {
		return err
	}

	meta, err := controller.service.Metadata(ec.Request().Context(), url)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, metadataToDto(meta))
}

// decodeURL extracts the URL from the JSON request body. A body which
// cannot be decoded, or which does not carry a non-empty string URL, is
// reported identically.
func (controller *Controller) decodeURL(ec echo.Context) (string, error) {
	var request conversionRequest
	if err := json.NewDecoder(ec.Request().Body).Decode(&request); err != nil {
		return "", convert.ErrURLRequired(fmt.Errorf("JSON body illegal: %w", err))
	}

	if err := controller.validate.Struct(request); err != nil {
		return "", convert.ErrURLRequired(err)
	}

	return request.URL, nil
}
