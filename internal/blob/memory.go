package blob

import (
	memorystore "pantrycore/internal/infra/blob/memory"
)

// NewMemory returns a document store that keeps receipt attachments and
// export snapshots in process memory. Used by tests and throwaway runs;
// nothing survives a restart.
func NewMemory() Store { return memorystore.New() }
