package domain_test

import (
	"testing"

	"pantrycore/testutil"
)

// The domain package is the repository's public model surface; it must not
// reach into service internals or infra backends.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/domain must not depend on internal packages")
}
