package migrate

import "fmt"

// Registry holds the version and migrations for a single schema target
// (config TOML or job TOML). Each target gets its own instance so that
// version numbers and migration lists are fully independent.
type Registry struct {
	// CurrentVersion is the latest schema version that this registry targets.
	CurrentVersion int
	// Migrations is the list of versioned upgrades. Exported so tests can
	// override the migration list for a given registry instance.
	Migrations []Migration
}

// Register appends a migration to the registry. It panics if a migration
// with the same version is already registered, or if the migration targets
// a version beyond [Registry.CurrentVersion].
func (r *Registry) Register(m Migration) {
	if m.Version > r.CurrentVersion {
		panic(fmt.Sprintf("migrate: migration v%d is newer than current version %d", m.Version, r.CurrentVersion))
	}
	for _, existing := range r.Migrations {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("migrate: duplicate migration version %d (description: %q)", m.Version, m.Description))
		}
	}
	r.Migrations = append(r.Migrations, m)
}

// NeedsMigration reports whether a file at fileVersion would have any
// migrations applied.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return NeedsMigration(fileVersion, r.CurrentVersion, r.Migrations)
}

// Run applies registered migrations sequentially where fromVersion < m.Version.
func (r *Registry) Run(data []byte, fromVersion int) ([]byte, int, error) {
	if fromVersion > r.CurrentVersion {
		return nil, fromVersion, fmt.Errorf("schema version %d is newer than supported version %d", fromVersion, r.CurrentVersion)
	}
	return Run(data, fromVersion, r.Migrations)
}

// Upgrade detects the version of data and runs every pending migration.
func (r *Registry) Upgrade(data []byte) ([]byte, int, error) {
	v, err := Version(data)
	if err != nil {
		return nil, 0, err
	}
	return r.Run(data, v)
}

// Config is the migration registry for config.toml files. Version 2 moved
// the flat render keys into the [render] table.
var Config = &Registry{CurrentVersion: 2}

// Job is the migration registry for spooled job files.
var Job = &Registry{CurrentVersion: 1}
