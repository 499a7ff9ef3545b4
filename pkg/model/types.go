package model

// EngineType identifies the working-copy engine backing a session.
type EngineType string

const (
	EngineNative EngineType = "native"
	EngineGit    EngineType = "git"
)

// Schedule describes the pending operation recorded for a versioned path.
type Schedule string

const (
	ScheduleNormal Schedule = "normal"
	ScheduleAdd    Schedule = "add"
	ScheduleDelete Schedule = "delete"
)

// HashValue is a SHA-256 hash stored as a hex string.
type HashValue string
