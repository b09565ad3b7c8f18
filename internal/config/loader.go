package config

import (
	"errors"
	"io/fs"
	"os"
)

// ProjectConfigFile is the config file picked up from the working directory
// when no explicit path is given.
const ProjectConfigFile = "itembank.yaml"

// Load returns the defaults merged with the file at path, or with
// ProjectConfigFile when path is empty and that file exists. It returns the
// path actually read ("" when none) and validates the result.
func Load(path string) (*Config, string, error) {
	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(ProjectConfigFile); errors.Is(err, fs.ErrNotExist) {
			return cfg, "", cfg.Validate()
		}
		path = ProjectConfigFile
	}

	fileCfg, err := LoadFromFile(path)
	if err != nil {
		return nil, "", err
	}
	cfg.Merge(fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
