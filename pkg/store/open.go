package store

import (
	"fmt"

	"github.com/papercomputeco/catalog/pkg/store/badgerstore"
	"github.com/papercomputeco/catalog/pkg/store/inmemory"
	"github.com/papercomputeco/catalog/pkg/store/sqlite"
)

// Open constructs a store for the named provider. path is the database
// file (sqlite) or directory (badger); it is ignored by the memory
// provider.
func Open(provider, path string) (Store, error) {
	switch provider {
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("sqlite provider requires a path")
		}
		return sqlite.New(path)
	case "badger":
		if path == "" {
			return nil, fmt.Errorf("badger provider requires a path")
		}
		return badgerstore.New(path)
	case "memory", "":
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %q (available: sqlite, badger, memory)", provider)
	}
}
