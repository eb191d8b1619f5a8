package storage

import (
	"strings"

	"material-master/config"
	"material-master/workflow"
)

// OpenWorkflowStore returns the store selected by cfg.Storage and a close
// function for it.
func OpenWorkflowStore(cfg config.Config) (workflow.Store, func() error, error) {
	switch strings.ToLower(cfg.Storage) {
	case config.StorageSQLite:
		db, err := config.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStore(db), db.Close, nil
	default:
		return NewFileStore(cfg.WorkflowPath(), cfg.AuditPath()), func() error { return nil }, nil
	}
}
