package logging

// Config is the optional logging section of sheetsync.yml:
//
//	logging:
//	  level: debug
//	  file:
//	    enabled: true
//	  format:
//	    preset: json
type Config struct {
	// Level is overridden by SHEETSYNC_LOG_LEVEL.
	Level string `yaml:"level"`

	// ReportCaller adds file, line and function. SHEETSYNC_LOG_CALLER=true also enables it.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig sends every component's log lines to a file as well.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path defaults to a dated file under the state dir.
	Path string `yaml:"path"`
}

// FormatConfig selects how lines look.
type FormatConfig struct {
	// Preset is "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`

	// StructuredToStderr is "auto", "always" or "never". Auto writes to
	// stderr only when debugging or when stderr is not a terminal.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
