package config

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs loads the configuration from a directory of fsys.
func LoadFs(fsys afero.Fs, path string) (*Configuration, error) {
	dir := dirOf(path)
	configFs := afero.NewBasePathFs(fsys, dir)

	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	out.configFs = configFs
	return &out, nil
}

// Initialize writes the default configuration to dir unless one exists.
func Initialize(dir string, logger *zap.SugaredLogger) (*Configuration, error) {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize on an arbitrary filesystem.
func InitializeFs(fsys afero.Fs, dir string, logger *zap.SugaredLogger) (*Configuration, error) {
	dir = dirOf(dir)
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	configFs := afero.NewBasePathFs(fsys, dir)

	exists, err := afero.Exists(configFs, ConfigurationName)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Infof("Configuration already exists in %q, leaving it alone.", dir)
	default:
		logger.Infof("Writing default configuration to %q.", dir)
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return LoadFs(fsys, dir)
}
