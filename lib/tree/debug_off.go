//go:build !treedebug

package tree

const debugChecks = false
