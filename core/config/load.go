package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return loadFs(afero.NewBasePathFs(afero.NewOsFs(), path))
}

func loadFs(fs afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(fs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	out.configFs = fs

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &out, nil
}

// Initialize writes the default configuration into the directory,
// refusing to clobber an existing one.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), path), logger)
}

func initializeFs(fs afero.Fs, logger *log.Logger) (*Configuration, error) {
	switch _, err := fs.Stat(ConfigurationName); {
	case err == nil:
		return nil, fmt.Errorf("%s already exists, remove it first", ConfigurationName)
	case os.IsNotExist(err):
		// Expected.
	default:
		return nil, err
	}

	logger.Printf("Writing %s", ConfigurationName)
	if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
		return nil, err
	}

	cfg, err := loadFs(fs)
	if err != nil {
		return nil, err
	}

	castsDir := filepath.Join(cfg.logDir(), CastsDirName)
	logger.Printf("Creating %s/", castsDir)
	if err := fs.MkdirAll(castsDir, 0700); err != nil {
		return nil, err
	}

	return cfg, nil
}
