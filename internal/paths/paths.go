// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile       = "emojigen.pid"
	ConfigFile    = "config.toml"
	LogFile       = "emojigen.log"
	FontsDir      = "fonts"
	FontCacheDir  = "fonts/.cache"
	JobsDir       = "jobs"
	OutDir        = "out"
	DoneDir       = "done"
	FailedDir     = "failed"
	FailureExt    = ".error"
	BinaryName    = "emojigen"
	DataDirRel    = ".emojigen" // relative to $HOME
	ConfigBackExt = ".bak"
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Resolve returns p unchanged when it is absolute, otherwise p joined onto
// the data directory. Config values such as fonts.dir and watch.jobs_dir are
// resolved this way.
func (d DataDir) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, filepath.FromSlash(p))
}

// Done returns the directory processed jobs are moved into.
func Done(jobsDir string) string { return filepath.Join(jobsDir, DoneDir) }

// Failed returns the directory rejected jobs are moved into.
func Failed(jobsDir string) string { return filepath.Join(jobsDir, FailedDir) }
