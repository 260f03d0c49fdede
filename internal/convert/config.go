package convert

import "time"

const bytesPerMB = 1024 * 1024

// Config bounds the resources a single yt-dlp invocation may consume.
// Neither value limits the size of the produced audio file.
type Config struct {
	// MaxOutputMB caps how much stdout/stderr output is captured from
	// the tool before it is killed.
	MaxOutputMB int `yaml:"max_file_size_mb" toml:"max_file_size_mb" env:"MAX_FILE_SIZE_MB" env-default:"100" validate:"min=1"`

	// TimeoutMS is the wall-clock limit for the download and transcode.
	TimeoutMS int `yaml:"conversion_timeout_ms" toml:"conversion_timeout_ms" env:"CONVERSION_TIMEOUT_MS" env-default:"300000" validate:"min=1"`
}

func (config *Config) MaxOutputBytes() int64 {
	return int64(config.MaxOutputMB) * bytesPerMB
}

func (config *Config) Timeout() time.Duration {
	return time.Duration(config.TimeoutMS) * time.Millisecond
}
