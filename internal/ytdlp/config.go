package ytdlp

// DefaultBinary is looked up on $PATH when no explicit binary
// path is configured.
const DefaultBinary = "yt-dlp"

type Config struct {
	// BinaryPath is the path to (or $PATH name of) the yt-dlp executable.
	BinaryPath string `yaml:"binary_path" toml:"binary_path" env:"YTDLP_PATH" env-default:"yt-dlp"`
}

// Binary returns the configured executable, falling back to DefaultBinary.
func (config Config) Binary() string {
	if config.BinaryPath == "" {
		return DefaultBinary
	}

	return config.BinaryPath
}
