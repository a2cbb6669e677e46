// Package database provides SQLite-based storage for codebook build
// history.
//
// Every build can be recorded with its document digest and the issues of
// its validation report. Comparing the two most recent builds of a dataset
// shows which data-quality issues appeared or were resolved between them.
// The database is a single file opened through modernc.org/sqlite, so no
// cgo toolchain is needed.
package database
