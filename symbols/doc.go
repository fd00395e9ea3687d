// Package symbols is the process-wide symbol table shared by peer bridges.
//
// Native extension stacks traditionally re-open their own shared object
// with global symbol visibility so sibling extensions resolve common engine
// symbols to one copy. This package replaces that loader side channel with
// an explicit table: registration is first-wins and idempotent, resolution
// always yields the single shared instance, and a failed (duplicate)
// registration is never an error.
package symbols
