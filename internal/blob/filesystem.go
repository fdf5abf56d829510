package blob

import (
	"pantrycore/internal/infra/blob/fs"
)

// NewFilesystem stores documents as files under root, mirroring the
// receipts/<id>/ and exports/ key layout as directories. This is the default
// backend for a single-user install where the documents directory lives next
// to the data files. The return type is the interface so call sites never
// depend on the concrete backend.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
