// Package storepath resolves the snapshot store location shared by the
// catalog commands.
package storepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/catalog/pkg/dotdir"
	"github.com/papercomputeco/catalog/pkg/store"
)

// Resolve returns the configured storage provider and a concrete path
// for it. An empty configured path falls back to the resolved .catalog/
// directory (catalog.db for sqlite, badger/ for badger).
func Resolve(v *viper.Viper, configDir string) (provider, path string, err error) {
	provider = strings.TrimSpace(v.GetString("storage.provider"))
	path = strings.TrimSpace(v.GetString("storage.path"))

	if provider == "" {
		provider = "sqlite"
	}
	if provider == "memory" || path != "" {
		return provider, path, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("CATALOG_DB")); envPath != "" {
		return provider, envPath, nil
	}

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return "", "", err
	}
	if target == "" {
		return "", "", errors.New("could not resolve a .catalog directory; pass --storage-path")
	}

	switch provider {
	case "badger":
		path = filepath.Join(target, "badger")
	default:
		path = filepath.Join(target, "catalog.db")
	}
	return provider, path, nil
}

// Open resolves and opens the configured store.
func Open(v *viper.Viper, configDir string) (store.Store, error) {
	provider, path, err := Resolve(v, configDir)
	if err != nil {
		return nil, err
	}
	return store.Open(provider, path)
}
