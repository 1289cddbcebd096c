package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ErrNoAppLog is returned when the event log is disabled.
var ErrNoAppLog = errors.New("app log disabled")

type Configuration struct {
	configFs afero.Fs

	HistorySize int    `json:"history_size" validate:"gte=1"`
	ArgLimit    int    `json:"arg_limit" validate:"gte=1"`
	Prompt      string `json:"prompt"`
	Color       string `json:"color" validate:"oneof=always auto never"`
	AppLog      string `json:"app_log" validate:"omitempty,excludes=/"`
	LogLevel    string `json:"log_level" validate:"oneof=debug info warn error"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// Level returns the minimum level of logged events.
func (c *Configuration) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	if c.AppLog == "" {
		return nil, ErrNoAppLog
	}
	return c.fs().OpenFile(c.AppLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	if c.AppLog == "" {
		return nil, ErrNoAppLog
	}
	return c.fs().OpenFile(c.AppLog, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration rooted at path.
func Default(path string) *Configuration {
	return DefaultFs(afero.NewOsFs(), path)
}

// DefaultFs is Default on an arbitrary filesystem.
func DefaultFs(fsys afero.Fs, path string) *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewBasePathFs(fsys, dirOf(path))
	return out
}

// dirOf moves back up a level when given the path to a config.yaml file.
// The result is absolute because afero.BasePathFs rejects paths that don't
// share its prefix, which "." never does.
func dirOf(path string) string {
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
