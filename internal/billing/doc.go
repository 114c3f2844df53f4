// Package billing is the stateless core of the tracker: renewal scheduling,
// cost allocation between an owner and contributors, contribution status, and
// the per-owner aggregate report.
//
// Every function is a deterministic computation over the records it is given
// and an explicit reference date. Nothing here reads the clock, blocks, or
// performs I/O; callers load a consistent snapshot and pass it in.
package billing
