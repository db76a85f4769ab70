package database

import (
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownDriver is returned when no driver is registered under a name.
var ErrUnknownDriver = errors.New("unknown database driver")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

type (
	// Options identify the database to connect to.
	Options struct {
		// Driver is the registry name, e.g. postgres or sqlite.
		Driver string

		// URL is the driver specific connection string.
		URL string

		// User and Password override any credentials in URL when set.
		User     string
		Password string
	}

	// Driver knows how to open one kind of database.
	Driver struct {
		Dialect Dialect
		Open    func(Options) (*sql.DB, error)
	}
)

// Register makes a driver available under name. Names are case-insensitive.
// Registering a name twice, or a driver without an Open func, panics.
func Register(name string, d Driver) {
	if d.Open == nil {
		panic("database: Register driver is missing Open")
	}

	key := strings.ToLower(name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[key]; dup {
		panic("database: Register called twice for driver " + name)
	}

	registry[key] = d
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[strings.ToLower(name)]
	if !ok {
		return Driver{}, errors.Wrapf(ErrUnknownDriver, "%q (available: %s)", name, strings.Join(driverNames(), ", "))
	}

	return d, nil
}

// Drivers returns the sorted names of all registered drivers.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return driverNames()
}

func driverNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}
