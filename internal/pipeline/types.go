// Package pipeline wires loading, building, closure, comparison and writing
// into the runs the command line exposes, reporting progress per input file.
package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads and parses an input file.
	StageLoad Stage = "load"
	// StageBuild links declarations into a snapshot.
	StageBuild Stage = "build"
	// StageClosure computes the visible set.
	StageClosure Stage = "closure"
	// StageCheck compares two snapshots.
	StageCheck Stage = "check"
	// StageWrite serializes a snapshot.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for an input file (or for the overall run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}
