package model

import "time"

// Entry is the per-path record stored in .wcs/entries.json. Paths are kept
// relative to the working-copy root, forward-slash separated.
type Entry struct {
	Path         string    `json:"path"`
	Schedule     Schedule  `json:"schedule"`
	Conflicted   bool      `json:"conflicted,omitempty"`
	CopiedFrom   string    `json:"copied_from,omitempty"`
	PristineHash HashValue `json:"pristine_hash,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Info summarizes an open working copy for callers and the CLI.
type Info struct {
	Root   string     `json:"root"`
	Engine EngineType `json:"engine"`
	User   string     `json:"user,omitempty"`
}
