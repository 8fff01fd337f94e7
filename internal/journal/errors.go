package journal

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrInvalidDBPath = errors.ErrorCode("journal_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("journal_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("journal_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("journal_schema_migration_failed")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("journal_storage_access_failed")
	ErrStorageInit   = errors.ErrInitFailed
	ErrStorageClose  = errors.ErrShutdownFailed

	ErrInvalidEvent     = errors.ErrorCode("journal_invalid_event")
	ErrOperationTimeout = errors.ErrTimeout
)

func init() {
	errors.RegisterMessage(ErrInvalidDBPath, "Journal database path is empty")
	errors.RegisterMessage(ErrSchemaInitFailed, "Failed to create journal schema")
	errors.RegisterMessage(ErrSchemaValidationFailed, "Failed to validate journal schema")
	errors.RegisterMessage(ErrSchemaMigrationFailed, "Failed to migrate journal schema")
	errors.RegisterMessage(ErrStorageAccess, "Failed to write journal")
	errors.RegisterMessage(ErrInvalidEvent, "Invalid journal event")
}
