package config

const (
	defaultDataDir        = "~/.local/share/dubloom"
	defaultLogDir         = "~/.local/share/dubloom/logs"
	defaultPublicBaseURL  = "https://api.elevenlabs.io/v1/dubbing"
	defaultStudioBaseURL  = "https://api.us.elevenlabs.io/v1/dubbing"
	defaultRequestTimeout = 30
	defaultReadyMarker    = "#render"
	defaultExportedMarker = "#exported"
	defaultPollInterval   = 5
	defaultRenderTimeout  = 15 * 60
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Studio: Studio{
			PublicBaseURL:  defaultPublicBaseURL,
			StudioBaseURL:  defaultStudioBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Markers: Markers{
			Ready:    defaultReadyMarker,
			Exported: defaultExportedMarker,
		},
		Render: Render{
			PollInterval:   defaultPollInterval,
			TimeoutSeconds: defaultRenderTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
