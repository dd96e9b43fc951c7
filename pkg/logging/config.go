package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/constants"
)

// Config describes how scan and query logs are written.
type Config struct {
	// Level is the lowest level written: trace, debug, info, warn, error,
	// or off
	Level string

	// Format is auto, json or console. Auto picks console on a terminal
	// and JSON when logs are piped to a file or collector.
	Format string

	// Output is stderr, stdout, discard or the path of a file that logs
	// are appended to
	Output string

	// TimeFormat names the console timestamp layout (kitchen, rfc3339,
	// rfc3339nano, stamp, unix) or gives a Go layout
	TimeFormat string

	// NoColor turns off console colors
	NoColor bool

	// AddCaller adds file:line to every entry; always on at debug and below
	AddCaller bool

	// Fields are attached to every entry, such as a host or archive site
	Fields map[string]any
}

// Environment variables read by ConfigFromEnv.
const (
	envLevel      = "LOG_LEVEL"
	envFormat     = "LOG_FORMAT"
	envOutput     = "LOG_OUTPUT"
	envTimeFormat = "LOG_TIME_FORMAT"
	envCaller     = "LOG_CALLER"
	envFields     = "LOG_FIELDS"
)

// DefaultConfig returns info-level logs on stderr, formatted for whatever
// stderr is connected to.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// ConfigFromEnv starts from DefaultConfig and applies LOG_LEVEL,
// LOG_FORMAT, LOG_OUTPUT, LOG_TIME_FORMAT, LOG_CALLER and LOG_FIELDS.
// LOG_FIELDS holds comma separated key=value pairs.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	for env, field := range map[string]*string{
		envLevel:      &cfg.Level,
		envFormat:     &cfg.Format,
		envOutput:     &cfg.Output,
		envTimeFormat: &cfg.TimeFormat,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	cfg.AddCaller = os.Getenv(envCaller) == "true"
	cfg.Fields = parseFields(os.Getenv(envFields))
	return cfg
}

// NewLoggerFromConfig builds a logger from cfg and makes its level the
// global zerolog level. A nil cfg means DefaultConfig().
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out := openOutput(cfg.Output)
	var w io.Writer = out
	if useConsole(cfg.Format, out) {
		w = consoleWriter(out, parseTimeFormat(cfg.TimeFormat), cfg.NoColor)
	}

	logCtx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}
	for k, v := range cfg.Fields {
		logCtx = addField(logCtx, k, v)
	}
	return logCtx.Logger()
}

// Configure replaces the default logger with one built from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// openOutput resolves an Output setting. A log file that cannot be opened
// falls back to stderr so a scan never fails over its logs.
func openOutput(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return file
}

// useConsole reports whether entries for out should be human readable.
func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "pretty", "text":
		return true
	case "", "auto":
		f, ok := out.(*os.File)
		return ok && isatty.IsTerminal(f.Fd())
	}
	return false
}

// parseLevel accepts zerolog level names plus warning and off; anything
// else is info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

var timeLayouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
	"unix":        "",
	"epoch":       "",
	"granule":     constants.TimeFormatGranule,
}

// parseTimeFormat maps a TimeFormat name to a layout. Strings that look
// like a Go layout are used as given.
func parseTimeFormat(format string) string {
	if layout, ok := timeLayouts[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

func parseFields(fields string) map[string]any {
	result := make(map[string]any)
	for _, field := range strings.Split(fields, ",") {
		if key, value, ok := strings.Cut(field, "="); ok {
			result[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return result
}

// addField attaches value with the zerolog method matching its type.
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Time:
		return ctx.Time(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		if key == "error" || key == "err" {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}
