package constants

import "time"

const (
	// FileTimestampLayout is the run-scoped token appended to every
	// destination filename. Second resolution, computed once at startup.
	FileTimestampLayout = "20060102T150405"
)

const (
	DefaultSFTPPort = 22
	SFTPDialTimeout = 30 * time.Second
)

const (
	CollectorEndpoint   = "http://collector.csvsink.dev/i"
	CollectorTimeout    = 10 * time.Second
	CollectorMaxRetries = 2
)

const (
	FlattenSeparator = "__"
)

const (
	// MaxLineBytes bounds a single input message line and a destination
	// file's header row. The wire format has no limit of its own; this
	// cap exists so a runaway line fails the run instead of growing the
	// scanner buffer without bound.
	MaxLineBytes = 20 * 1024 * 1024
)
