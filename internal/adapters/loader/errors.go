package loader

import "fmt"

// DepotFileNotFoundError is returned when the depots file is missing or unreadable.
type DepotFileNotFoundError struct {
	Path string
	Err  error
}

func (e *DepotFileNotFoundError) Error() string {
	return fmt.Sprintf("depot file not found: %s: %v", e.Path, e.Err)
}

func (e *DepotFileNotFoundError) Unwrap() error { return e.Err }

// WarehouseOrdersLoadError is returned when an orders CSV cannot be opened
// or has no usable header. Individual bad rows are skipped instead.
type WarehouseOrdersLoadError struct {
	Path string
	Err  error
}

func (e *WarehouseOrdersLoadError) Error() string {
	return fmt.Sprintf("warehouse orders could not be loaded from %s: %v", e.Path, e.Err)
}

func (e *WarehouseOrdersLoadError) Unwrap() error { return e.Err }
