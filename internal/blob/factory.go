package blob

import (
	"context"
	"fmt"
	"os"
)

// Open selects the document store holding receipt scans, archived receipt
// payloads, and export snapshots. The driver comes from the environment so a
// single binary can run against a local documents directory or a bucket:
//
//	PANTRYCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	PANTRYCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./documents)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("PANTRYCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		root := os.Getenv("PANTRYCORE_BLOB_FS_ROOT")
		return NewFilesystem(root)
	case DriverS3:
		return OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
