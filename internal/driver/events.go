package driver

import "time"

// Stage describes a high-level build phase for one package.
type Stage string

const (
	// StageLoad covers reading the package sources from disk.
	StageLoad Stage = "load"
	// StageCompile covers the whole parse-to-lower pipeline.
	StageCompile Stage = "compile"
	// StageCache covers the diagnostics-cache lookup and store.
	StageCache Stage = "cache"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the package is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished cleanly.
	StatusDone Status = "done"
	// StatusError indicates the stage produced errors.
	StatusError Status = "error"
)

// Event reports progress for a package (or for the overall build when
// Package is empty).
type Event struct {
	Package string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, pkg string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Package: pkg, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
