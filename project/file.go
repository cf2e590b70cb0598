package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/lixenwraith/vi-sprite/raster"
)

// Save writes frames to path, replacing any existing file atomically
func Save(path string, frames []*raster.Buffer) error {
	data, err := Marshal(frames)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vi-sprite-*")
	if err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "save %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "save %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Load reads and decodes the project at path
// Open and read failures are returned; content problems degrade per Unmarshal
func Load(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "load %s", path)
	}
	res, err := Unmarshal(data)
	if err != nil {
		return res, errors.Wrapf(err, "load %s", path)
	}
	return res, nil
}
