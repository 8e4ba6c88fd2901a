package main

import (
	"os"
	"path/filepath"
)

func defaultRegistryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "shunt", "manifests.json"), nil
}

func defaultStatusCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "shunt", "status.json"), nil
}
