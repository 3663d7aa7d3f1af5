package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/walink/internal/app"
	"github.com/atomicstack/walink/internal/state"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	File    string
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig             = "WALINK_CONFIG"
	envDataDir            = "WALINK_DATA_DIR"
	envDemo               = "WALINK_DEMO"
	envWidth              = "WALINK_WIDTH"
	envHeight             = "WALINK_HEIGHT"
	envShowFooter         = "WALINK_FOOTER"
	envSettleDelay        = "WALINK_SETTLE_DELAY"
	envNoticeTTL          = "WALINK_NOTICE_TTL"
	envReadyRetries       = "WALINK_READY_RETRIES"
	envReadyRetryInterval = "WALINK_READY_RETRY_INTERVAL"
	envPickerDir          = "WALINK_PICKER_DIR"
	envTrace              = "WALINK_TRACE"
	envLogFile            = "WALINK_LOG_FILE"

	DefaultLogFile   = "walink.log"
	DefaultNoticeTTL = 3000 * time.Millisecond
)

// fileConfig mirrors the YAML file. Unset keys keep the built-in default.
type fileConfig struct {
	DataDir            *string `yaml:"data_dir"`
	Demo               *bool   `yaml:"demo"`
	Width              *int    `yaml:"width"`
	Height             *int    `yaml:"height"`
	Footer             *bool   `yaml:"footer"`
	SettleDelay        *string `yaml:"settle_delay"`
	NoticeTTL          *string `yaml:"notice_ttl"`
	ReadyRetries       *int    `yaml:"ready_retries"`
	ReadyRetryInterval *string `yaml:"ready_retry_interval"`
	PickerDir          *string `yaml:"picker_dir"`
	Trace              *bool   `yaml:"trace"`
	LogFile            *string `yaml:"log_file"`
}

// Load parses configuration from CLI arguments, environment variables and
// the optional config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Flags win over
// environment variables, which win over the config file.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	cfg := defaults(env)
	cfg.File = envOrDefault(env, envConfig, "")
	if path := scanConfigFlag(args); path != "" {
		cfg.File = path
	}
	if cfg.File != "" {
		if err := applyFile(&cfg, cfg.File); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	fs := newFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, &HelpError{Usage: usage(fs)}
		}
		return Config{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.Flags = map[string]string{
		"config":             cfg.File,
		"dataDir":            cfg.App.DataDir,
		"demo":               strconv.FormatBool(cfg.App.Demo),
		"width":              strconv.Itoa(cfg.App.Width),
		"height":             strconv.Itoa(cfg.App.Height),
		"footer":             strconv.FormatBool(cfg.App.ShowFooter),
		"settleDelay":        cfg.App.Policy.SettleDelay.String(),
		"noticeTTL":          cfg.App.NoticeTTL.String(),
		"readyRetries":       strconv.Itoa(cfg.App.Policy.MaxRetries),
		"readyRetryInterval": cfg.App.Policy.RetryInterval.String(),
		"pickerDir":          cfg.App.PickerDir,
		"trace":              strconv.FormatBool(cfg.Logging.Trace),
		"logFile":            cfg.Logging.FilePath,
	}
	cfg.Args = append([]string(nil), args...)
	return cfg, nil
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("walink", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.String("config", cfg.File, "path to a YAML config file")
	fs.StringVar(&cfg.App.DataDir, "data-dir", cfg.App.DataDir, "directory holding the device store")
	fs.BoolVar(&cfg.App.Demo, "demo", cfg.App.Demo, "run against the simulated engine instead of WhatsApp")
	fs.IntVar(&cfg.App.Width, "width", cfg.App.Width, "desired viewport width in cells (0 uses terminal width)")
	fs.IntVar(&cfg.App.Height, "height", cfg.App.Height, "desired viewport height in rows (0 uses terminal height)")
	fs.BoolVar(&cfg.App.ShowFooter, "footer", cfg.App.ShowFooter, "show the key hint footer")
	fs.DurationVar(&cfg.App.Policy.SettleDelay, "settle-delay", cfg.App.Policy.SettleDelay, "wait after auth-success before querying readiness")
	fs.DurationVar(&cfg.App.NoticeTTL, "notice-ttl", cfg.App.NoticeTTL, "how long success notices stay visible")
	fs.IntVar(&cfg.App.Policy.MaxRetries, "ready-retries", cfg.App.Policy.MaxRetries, "extra readiness queries after a negative answer")
	fs.DurationVar(&cfg.App.Policy.RetryInterval, "ready-retry-interval", cfg.App.Policy.RetryInterval, "delay between readiness queries")
	fs.StringVar(&cfg.App.PickerDir, "picker-dir", cfg.App.PickerDir, "directory the attachment picker opens in")
	fs.BoolVar(&cfg.Logging.Trace, "trace", cfg.Logging.Trace, "enable verbose JSON trace logging")
	fs.StringVar(&cfg.Logging.FilePath, "log-file", cfg.Logging.FilePath, "path to the log file")
	return fs
}

// HelpError is returned by LoadArgs when --help is given. It carries the
// usage text rendered from the same flag set that parsed the arguments.
type HelpError struct {
	Usage string
}

func (e *HelpError) Error() string { return pflag.ErrHelp.Error() }

func (e *HelpError) Unwrap() error { return pflag.ErrHelp }

func usage(fs *pflag.FlagSet) string {
	return "Usage: walink [flags]\n\n" +
		"Links a WhatsApp account by QR code and sends text and media messages.\n\n" +
		"Flags:\n" + fs.FlagUsages()
}

func defaults(env map[string]string) Config {
	pickerDir, err := os.Getwd()
	if err != nil {
		pickerDir = "."
	}
	return Config{
		App: app.Config{
			DataDir:    defaultDataDir(env),
			ShowFooter: true,
			Policy:     state.DefaultPolicy(),
			NoticeTTL:  DefaultNoticeTTL,
			PickerDir:  pickerDir,
		},
		Logging: Logging{FilePath: DefaultLogFile},
	}
}

func defaultDataDir(env map[string]string) string {
	if xdg := strings.TrimSpace(env["XDG_DATA_HOME"]); xdg != "" {
		return filepath.Join(xdg, "walink")
	}
	home := strings.TrimSpace(env["HOME"])
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home == "" {
		return "walink-data"
	}
	return filepath.Join(home, ".local", "share", "walink")
}

// scanConfigFlag finds --config ahead of the full parse so the file can
// seed the flag defaults.
func scanConfigFlag(args []string) string {
	fs := pflag.NewFlagSet("walink-config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	setString(&cfg.App.DataDir, fc.DataDir)
	setBool(&cfg.App.Demo, fc.Demo)
	setInt(&cfg.App.Width, fc.Width)
	setInt(&cfg.App.Height, fc.Height)
	setBool(&cfg.App.ShowFooter, fc.Footer)
	setInt(&cfg.App.Policy.MaxRetries, fc.ReadyRetries)
	setString(&cfg.App.PickerDir, fc.PickerDir)
	setBool(&cfg.Logging.Trace, fc.Trace)
	setString(&cfg.Logging.FilePath, fc.LogFile)
	durations := []struct {
		key string
		raw *string
		dst *time.Duration
	}{
		{"settle_delay", fc.SettleDelay, &cfg.App.Policy.SettleDelay},
		{"notice_ttl", fc.NoticeTTL, &cfg.App.NoticeTTL},
		{"ready_retry_interval", fc.ReadyRetryInterval, &cfg.App.Policy.RetryInterval},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(*d.raw))
		if err != nil {
			return fmt.Errorf("config %s: %s: %w", path, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	var errs []error
	cfg.App.DataDir = envOrDefault(env, envDataDir, cfg.App.DataDir)
	cfg.App.PickerDir = envOrDefault(env, envPickerDir, cfg.App.PickerDir)
	cfg.Logging.FilePath = envOrDefault(env, envLogFile, cfg.Logging.FilePath)
	cfg.App.Demo = envOrBool(env, envDemo, cfg.App.Demo)
	cfg.App.ShowFooter = envOrBool(env, envShowFooter, cfg.App.ShowFooter)
	cfg.Logging.Trace = envOrBool(env, envTrace, cfg.Logging.Trace)
	cfg.App.Width = envOrInt(env, envWidth, cfg.App.Width)
	cfg.App.Height = envOrInt(env, envHeight, cfg.App.Height)
	cfg.App.Policy.MaxRetries = envOrInt(env, envReadyRetries, cfg.App.Policy.MaxRetries)
	for key, dst := range map[string]*time.Duration{
		envSettleDelay:        &cfg.App.Policy.SettleDelay,
		envNoticeTTL:          &cfg.App.NoticeTTL,
		envReadyRetryInterval: &cfg.App.Policy.RetryInterval,
	} {
		v, ok := env[key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*dst = parsed
	}
	return errors.Join(errs...)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		var help *HelpError
		if errors.As(err, &help) {
			fmt.Fprint(os.Stderr, help.Usage)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects negative sizes, durations and retry counts.
func Validate(cfg Config) error {
	var errs []error
	if cfg.App.Width < 0 {
		errs = append(errs, fmt.Errorf("width must be >= 0 (got %d)", cfg.App.Width))
	}
	if cfg.App.Height < 0 {
		errs = append(errs, fmt.Errorf("height must be >= 0 (got %d)", cfg.App.Height))
	}
	if cfg.App.Policy.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle-delay must be >= 0 (got %s)", cfg.App.Policy.SettleDelay))
	}
	if cfg.App.Policy.RetryInterval < 0 {
		errs = append(errs, fmt.Errorf("ready-retry-interval must be >= 0 (got %s)", cfg.App.Policy.RetryInterval))
	}
	if cfg.App.Policy.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("ready-retries must be >= 0 (got %d)", cfg.App.Policy.MaxRetries))
	}
	if cfg.App.NoticeTTL < 0 {
		errs = append(errs, fmt.Errorf("notice-ttl must be >= 0 (got %s)", cfg.App.NoticeTTL))
	}
	if strings.TrimSpace(cfg.App.DataDir) == "" && !cfg.App.Demo {
		errs = append(errs, errors.New("data-dir must not be empty"))
	}
	return errors.Join(errs...)
}
