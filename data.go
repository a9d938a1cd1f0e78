package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// readData loads every data file in dir, keyed by its name without the
// extension. A missing directory yields no data.
func readData(dir string) (map[string]any, error) {
	data := make(map[string]any)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data, nil
		}
		return nil, err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		switch ext {
		case ".yaml", ".yml", ".json", ".toml":
		default:
			continue
		}

		name := strings.TrimSuffix(e.Name(), ext)
		if _, ok := data[name]; ok {
			log.Warn("Duplicate data file for %s, ignoring %s", name, e.Name())
			continue
		}

		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}

		var v any
		switch ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(b, &v)
		case ".json":
			err = json.Unmarshal(b, &v)
		case ".toml":
			var m map[string]any
			err = toml.Unmarshal(b, &m)
			v = m
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		data[name] = v
	}

	return data, nil
}
