package installer

import (
	"os"

	"github.com/hashicorp/go-multierror"
)

// Rollback tracks paths touched by an install so a failure can undo them
type Rollback struct {
	changes []change
}

type change struct {
	path   string
	isDir  bool
	backup string // previous content moved aside, restored on Execute
}

// NewRollback creates a new rollback tracker
func NewRollback() *Rollback {
	return &Rollback{}
}

// AddDir records a directory that was created
func (r *Rollback) AddDir(path string) {
	r.changes = append(r.changes, change{path: path, isDir: true})
}

// AddFile records a file that did not exist before the install
func (r *Rollback) AddFile(path string) {
	r.changes = append(r.changes, change{path: path})
}

// AddReplaced records that path was moved to backup before being rewritten
func (r *Rollback) AddReplaced(path, backup string) {
	r.changes = append(r.changes, change{path: path, isDir: true, backup: backup})
}

// Execute undoes recorded changes in reverse order, continuing past failures
func (r *Rollback) Execute() error {
	var result *multierror.Error

	for i := len(r.changes) - 1; i >= 0; i-- {
		c := r.changes[i]
		var err error
		if c.isDir {
			err = os.RemoveAll(c.path)
		} else {
			err = os.Remove(c.path)
		}
		if err != nil && !os.IsNotExist(err) {
			result = multierror.Append(result, err)
			continue
		}
		if c.backup != "" {
			if err := os.Rename(c.backup, c.path); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	r.changes = nil
	return result.ErrorOrNil()
}

// Commit keeps the new state and discards backups
func (r *Rollback) Commit() error {
	var result *multierror.Error

	for _, c := range r.changes {
		if c.backup == "" {
			continue
		}
		if err := os.RemoveAll(c.backup); err != nil {
			result = multierror.Append(result, err)
		}
	}

	r.changes = nil
	return result.ErrorOrNil()
}
