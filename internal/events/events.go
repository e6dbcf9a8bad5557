// Package events declares the lifecycle events published by the automation
// request and mutation pipelines.
package events

import "time"

// RequestStart is emitted when an automation request is accepted.
type RequestStart struct {
	Op     string
	Remote string
}

// RequestFinish is emitted after an automation request completes.
type RequestFinish struct {
	Op        string
	ErrorCode string // empty on success
	Duration  time.Duration
}

// MutationStart is emitted after a write request resolves, before the
// transaction opens.
type MutationStart struct {
	Entity string
	Field  string
}

// MutationFinish is emitted when the write pipeline reaches its terminal
// state.
type MutationFinish struct {
	Entity    string
	Field     string
	ErrorCode string // empty on success
	Duration  time.Duration
}
