package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/hbomb79/Cadence/internal/convert"
	"github.com/hbomb79/Cadence/internal/ytdlp"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <soundcloud-url>",
	Short: "Print the metadata yt-dlp reports for a track, as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  probeRun,
}

type probeOutput struct {
	Artist      string   `json:"artist"`
	Title       string   `json:"title"`
	Duration    *float64 `json:"duration,omitempty"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Uploader    string   `json:"uploader,omitempty"`
	UploadDate  string   `json:"upload_date,omitempty"`
	Filename    string   `json:"filename"`
}

func probeRun(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	runner := ytdlp.NewExecRunner(config.ToolConfig)
	service := convert.New(&config.ConvertConfig, config.ToolConfig, runner)

	meta, err := service.Metadata(cmd.Context(), args[0])
	if err != nil {
		var convErr *convert.Error
		if errors.As(err, &convErr) {
			return errors.New(convErr.Message)
		}

		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(probeOutput{
		Artist:      meta.Artist,
		Title:       meta.Title,
		Duration:    meta.Duration,
		Description: meta.Description,
		Thumbnail:   meta.Thumbnail,
		Uploader:    meta.Uploader,
		UploadDate:  meta.UploadDate,
		Filename:    meta.Filename,
	})
}
