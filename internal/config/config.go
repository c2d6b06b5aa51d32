// Package config provides centralized configuration management for
// vncwatch. Configuration is loaded from environment variables with
// sensible defaults, then may be overridden by command-line flags.
// Invalid configuration fails fast with a list of helpful messages.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Connection configuration (spec §6 caller configuration)
	Host string
	Port int

	// ReplayFile, when set, takes precedence over Host/Port: the client
	// reads a previously captured `.vnclog` file instead of dialing out.
	ReplayFile string

	// PasswordSource names where the VNC auth password is read from:
	// "env:VNCWATCH_VNC_PASSWORD" or a file path prefixed with "file:".
	PasswordSource string

	// PreferredEncodings, in priority order, sent in SetEncodings.
	PreferredEncodings []string
	IncludeCursor      bool

	// ClipX/ClipY/ClipW/ClipH restrict FramebufferUpdateRequest to a
	// sub-rectangle of the screen; ClipW == 0 means "full screen".
	ClipX, ClipY, ClipW, ClipH int

	FrameRate   int
	DebugLevel  string
	Reconnect   int
	ConnectWait time.Duration

	// Capture output (recorder.Tee sink)
	CaptureDir string

	// Capture storage backend: "local" or "s3"
	StorageBackend string
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	RetentionDays  int

	// Catalog (modernc.org/sqlite capture metadata database)
	CatalogDB string

	// Movie output (ffmpeg MP4 encode alongside capture/replay)
	MovieEnabled bool
	MovieDir     string

	// Monitor (websocket spectator broadcast)
	MonitorAddr string
}

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Default values.
const (
	DefaultPort           = 5900
	DefaultPasswordSource = "env:VNCWATCH_VNC_PASSWORD"
	DefaultFrameRate      = 10
	DefaultDebugLevel     = "info"
	DefaultReconnect      = 3
	DefaultConnectWait    = 3 * time.Second
	DefaultCaptureDir     = "captures"
	DefaultStorageBackend = "local"
	DefaultRetentionDays  = 30
	DefaultCatalogDB      = "vncwatch.db"
	DefaultMovieDir       = "movies"
	DefaultMonitorAddr    = ":8099"
)

var defaultEncodings = []string{"hextile", "corre", "rre", "raw"}

// Load reads configuration from environment variables and returns a
// Config. It applies defaults for optional values and validates the
// result; callers needing CLI overrides should call LoadWithFlags
// instead, which calls Load itself.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               DefaultPort,
		PasswordSource:     DefaultPasswordSource,
		PreferredEncodings: append([]string(nil), defaultEncodings...),
		FrameRate:          DefaultFrameRate,
		DebugLevel:         DefaultDebugLevel,
		Reconnect:          DefaultReconnect,
		ConnectWait:        DefaultConnectWait,
		CaptureDir:         DefaultCaptureDir,
		StorageBackend:     DefaultStorageBackend,
		RetentionDays:      DefaultRetentionDays,
		CatalogDB:          DefaultCatalogDB,
		MovieDir:           DefaultMovieDir,
		MonitorAddr:        DefaultMonitorAddr,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return cfg, nil
}

// loadFromEnv populates the config from VNCWATCH_* environment
// variables, accumulating parse errors instead of failing on the
// first one so a caller sees every problem at once.
func (c *Config) loadFromEnv() error {
	var parseErrors ValidationErrors

	if v := os.Getenv("VNCWATCH_HOST"); v != "" {
		c.Host = v
	}

	if v := os.Getenv("VNCWATCH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_PORT",
				Message: fmt.Sprintf("invalid port number: %q (must be an integer)", v),
			})
		} else {
			c.Port = port
		}
	}

	if v := os.Getenv("VNCWATCH_REPLAY_FILE"); v != "" {
		c.ReplayFile = v
	}

	if v := os.Getenv("VNCWATCH_VNC_PASSWORD_SOURCE"); v != "" {
		c.PasswordSource = v
	}

	if v := os.Getenv("VNCWATCH_ENCODINGS"); v != "" {
		c.PreferredEncodings = strings.Split(v, ",")
	}

	if v := os.Getenv("VNCWATCH_INCLUDE_CURSOR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_INCLUDE_CURSOR",
				Message: fmt.Sprintf("invalid boolean: %q", v),
			})
		} else {
			c.IncludeCursor = b
		}
	}

	if v := os.Getenv("VNCWATCH_CLIP"); v != "" {
		x, y, w, h, err := parseClip(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_CLIP",
				Message: err.Error(),
			})
		} else {
			c.ClipX, c.ClipY, c.ClipW, c.ClipH = x, y, w, h
		}
	}

	if v := os.Getenv("VNCWATCH_FRAMERATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_FRAMERATE",
				Message: fmt.Sprintf("invalid rate: %q (must be an integer)", v),
			})
		} else if rate <= 0 {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_FRAMERATE",
				Message: fmt.Sprintf("rate must be positive: %d", rate),
			})
		} else {
			c.FrameRate = rate
		}
	}

	if v := os.Getenv("VNCWATCH_DEBUG_LEVEL"); v != "" {
		c.DebugLevel = v
	}

	if v := os.Getenv("VNCWATCH_RECONNECT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_RECONNECT",
				Message: fmt.Sprintf("invalid count: %q (must be an integer)", v),
			})
		} else {
			c.Reconnect = n
		}
	}

	if v := os.Getenv("VNCWATCH_CONNECT_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_CONNECT_WAIT",
				Message: fmt.Sprintf("invalid duration: %q", v),
			})
		} else {
			c.ConnectWait = d
		}
	}

	if v := os.Getenv("VNCWATCH_CAPTURE_DIR"); v != "" {
		c.CaptureDir = v
	}

	if v := os.Getenv("VNCWATCH_STORAGE_BACKEND"); v != "" {
		c.StorageBackend = v
	}

	if v := os.Getenv("VNCWATCH_S3_BUCKET"); v != "" {
		c.S3Bucket = v
	}
	if v := os.Getenv("VNCWATCH_S3_PREFIX"); v != "" {
		c.S3Prefix = v
	}
	if v := os.Getenv("VNCWATCH_S3_REGION"); v != "" {
		c.S3Region = v
	}

	if v := os.Getenv("VNCWATCH_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_RETENTION_DAYS",
				Message: fmt.Sprintf("invalid days: %q (must be an integer)", v),
			})
		} else {
			c.RetentionDays = days
		}
	}

	if v := os.Getenv("VNCWATCH_CATALOG_DB"); v != "" {
		c.CatalogDB = v
	}

	if v := os.Getenv("VNCWATCH_MOVIE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			parseErrors = append(parseErrors, ValidationError{
				Field:   "VNCWATCH_MOVIE_ENABLED",
				Message: fmt.Sprintf("invalid boolean: %q", v),
			})
		} else {
			c.MovieEnabled = b
		}
	}
	if v := os.Getenv("VNCWATCH_MOVIE_DIR"); v != "" {
		c.MovieDir = v
	}

	if v := os.Getenv("VNCWATCH_MONITOR_ADDR"); v != "" {
		c.MonitorAddr = v
	}

	if len(parseErrors) > 0 {
		return parseErrors
	}
	return nil
}

func parseClip(v string) (x, y, w, h int, err error) {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("expected x,y,w,h got %q", v)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid integer %q in clip", p)
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.ReplayFile == "" {
		if c.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "VNCWATCH_HOST",
				Message: "host cannot be empty unless VNCWATCH_REPLAY_FILE is set",
			})
		}
		if c.Port < 1 || c.Port > 65535 {
			errs = append(errs, ValidationError{
				Field:   "VNCWATCH_PORT",
				Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port),
			})
		}
	}

	if c.FrameRate <= 0 {
		errs = append(errs, ValidationError{
			Field:   "VNCWATCH_FRAMERATE",
			Message: fmt.Sprintf("framerate must be positive, got %d", c.FrameRate),
		})
	}

	switch c.StorageBackend {
	case "local":
		if c.CaptureDir == "" {
			errs = append(errs, ValidationError{
				Field:   "VNCWATCH_CAPTURE_DIR",
				Message: "capture directory cannot be empty for the local backend",
			})
		}
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, ValidationError{
				Field:   "VNCWATCH_S3_BUCKET",
				Message: "bucket cannot be empty for the s3 backend",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "VNCWATCH_STORAGE_BACKEND",
			Message: fmt.Sprintf("unknown storage backend %q (want local or s3)", c.StorageBackend),
		})
	}

	if c.CatalogDB == "" {
		errs = append(errs, ValidationError{
			Field:   "VNCWATCH_CATALOG_DB",
			Message: "catalog database path cannot be empty",
		})
	}

	return errs
}

// MustLoad loads configuration and exits the process if it fails.
// Use this for application startup where configuration errors are fatal.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to load configuration\n\n%s\n", err)
		os.Exit(1)
	}
	return cfg
}

// LoadWithFlags loads configuration from environment variables, then
// applies command-line flag overrides. Zero-valued arguments, and a port
// or frame rate equal to DefaultPort or DefaultFrameRate, are treated as
// "not provided" and left to the environment/default.
func LoadWithFlags(host string, port int, replayFile string, frameRate int) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if host != "" {
		cfg.Host = host
	}
	if port != 0 && port != DefaultPort {
		cfg.Port = port
	}
	if replayFile != "" {
		cfg.ReplayFile = replayFile
	}
	if frameRate != 0 && frameRate != DefaultFrameRate {
		cfg.FrameRate = frameRate
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return cfg, nil
}
