package blob

import (
	"context"

	infraS3 "pantrycore/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration type.
type S3Config = infraS3.Config

// NewS3 keeps receipt documents in an S3-compatible bucket. This is the
// backend to use when exports need to be presigned and shared, which the
// filesystem store cannot do.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// OpenFromEnv constructs an S3 store from the PANTRYCORE_BLOB_S3_* variables.
func OpenFromEnv(ctx context.Context) (Store, error) {
	return infraS3.OpenFromEnv(ctx)
}

// NewMockS3ForTests exposes the lightweight in-memory mock so cross-package
// tests can exercise the S3 request path without a bucket.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
