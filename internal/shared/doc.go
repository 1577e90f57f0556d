// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides a buffering slog handler for asserting on
// log output and writers for small Latin-1 source fixtures:
//
//	func TestSomething(t *testing.T) {
//	    sources := testutil.WriteSources(t)
//	    logger, handler := testutil.NewTestLogger(t)
//	    // ...
//	    testutil.AssertNoErrors(t, handler)
//	}
//
// Production code must not import testutil.
package shared
