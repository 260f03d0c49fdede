package conversions

import "github.com/hbomb79/Cadence/internal/ytdlp"

type (
	// conversionRequest is the body accepted by every conversion and
	// metadata endpoint.
	conversionRequest struct {
		URL string `json:"url" validate:"required"`
	}

	metadataDto struct {
		Artist      string   `json:"artist,omitempty"`
		Title       string   `json:"title,omitempty"`
		Duration    *float64 `json:"duration,omitempty"`
		Description string   `json:"description,omitempty"`
		Thumbnail   string   `json:"thumbnail,omitempty"`
		Uploader    string   `json:"uploader,omitempty"`
		UploadDate  string   `json:"upload_date,omitempty"`
	}
)

func metadataToDto(meta *ytdlp.TrackMetadata) metadataDto {
	return metadataDto{
		Artist:      meta.Artist,
		Title:       meta.Title,
		Duration:    meta.Duration,
		Description: meta.Description,
		Thumbnail:   meta.Thumbnail,
		Uploader:    meta.Uploader,
		UploadDate:  meta.UploadDate,
	}
}
