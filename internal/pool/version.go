package pool

// FormatVersion is the semantic version of this package's external
// interface (spec §6): the error values its operations return, the
// Allocation and Pool handle accessors, and the public operations
// (Init, Shutdown, Open, Close, Allocate, Free, Inspect). A caller that depends on a
// specific surface pins a semver.Constraints against it — see
// cmd/poolctl's --require-version flag.
const FormatVersion = "1.0.0"
