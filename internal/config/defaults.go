package config

const (
	defaultDataDir                  = "~/.local/share/callsheet"
	defaultLogDir                   = "~/.local/share/callsheet/logs"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultMatchThreshold           = 0.6
	defaultMatchCastWeight          = 0.4
	defaultMatchTextWeight          = 0.4
	defaultMatchFlagWeight          = 0.2
	defaultExtractionTimeoutSeconds = 60
	defaultExtractionRetryAttempts  = 3
)

// defaultPalette is the fixed avatar palette for placeholder characters.
// Indexed by cast number modulo palette size, so ids and colours are stable
// across runs.
var defaultPalette = []string{
	"#E57373", "#64B5F6", "#81C784", "#FFD54F",
	"#BA68C8", "#4DB6AC", "#F06292", "#A1887F",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Matching: Matching{
			Threshold:  defaultMatchThreshold,
			CastWeight: defaultMatchCastWeight,
			TextWeight: defaultMatchTextWeight,
			FlagWeight: defaultMatchFlagWeight,
		},
		Cast: Cast{
			Palette: append([]string(nil), defaultPalette...),
		},
		Extraction: Extraction{
			TimeoutSeconds:   defaultExtractionTimeoutSeconds,
			RetryMaxAttempts: defaultExtractionRetryAttempts,
		},
	}
}
