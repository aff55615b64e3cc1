package config

import (
	"os"
)

// LockVersion is the only ledger format copm writes
const LockVersion = 1

// LockSource describes where a locked package came from
type LockSource struct {
	Type    string `json:"type"`
	Repo    string `json:"repo"`
	Rev     string `json:"rev,omitempty"`
	SubPath string `json:"subPath,omitempty"`
}

// LockedPackage records what one install wrote
type LockedPackage struct {
	Name           string     `json:"name"`
	Version        string     `json:"version"`
	Source         LockSource `json:"source"`
	Integrity      string     `json:"integrity,omitempty"`
	Targets        []string   `json:"targets"`
	InstalledFiles []string   `json:"installedFiles"`
}

// Lockfile represents copm.lock
type Lockfile struct {
	Version  int             `json:"version"`
	Packages []LockedPackage `json:"packages"`
}

// NewLockfile returns an empty ledger
func NewLockfile() *Lockfile {
	return &Lockfile{Version: LockVersion, Packages: []LockedPackage{}}
}

// LoadLockfile loads a ledger, returning an empty one when the file is absent
func LoadLockfile(path string) (*Lockfile, error) {
	lock := NewLockfile()
	if err := readJSONFile(path, lock); err != nil {
		if os.IsNotExist(err) {
			return NewLockfile(), nil
		}
		return nil, err
	}
	if lock.Version == 0 {
		lock.Version = LockVersion
	}
	return lock, nil
}

// Save writes the ledger to disk
func (l *Lockfile) Save(path string) error {
	if l.Packages == nil {
		l.Packages = []LockedPackage{}
	}
	for i := range l.Packages {
		if l.Packages[i].Targets == nil {
			l.Packages[i].Targets = []string{}
		}
		if l.Packages[i].InstalledFiles == nil {
			l.Packages[i].InstalledFiles = []string{}
		}
	}
	return writeJSONFile(path, l)
}

// Find returns the record for name
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	for i := range l.Packages {
		if l.Packages[i].Name == name {
			return &l.Packages[i], true
		}
	}
	return nil, false
}

// Upsert replaces the record with the same name in place, or appends it
func (l *Lockfile) Upsert(pkg LockedPackage) {
	for i := range l.Packages {
		if l.Packages[i].Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// Remove deletes the record for name, reporting whether it existed
func (l *Lockfile) Remove(name string) bool {
	for i := range l.Packages {
		if l.Packages[i].Name == name {
			l.Packages = append(l.Packages[:i], l.Packages[i+1:]...)
			return true
		}
	}
	return false
}
