//go:build treedebug

package tree

// Built with -tags treedebug, every attach and detach is followed by
// a full validation.
const debugChecks = true
