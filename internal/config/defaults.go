package config

const (
	defaultDataDir      = "~/.local/share/songscribe/data"
	defaultLogDir       = "~/.local/share/songscribe/logs"
	defaultRawSubdir    = "raw-lyrics"
	defaultTransSubdir  = "transcribed-lyrics"
	defaultAPIBind      = "127.0.0.1:8157"
	defaultWorkerScript = "scripts/download-and-transcribe.ts"
	defaultNodeMajor    = 20
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Worker: Worker{
			ScriptPath:   defaultWorkerScript,
			NodeMajor:    defaultNodeMajor,
			SkipExisting: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
