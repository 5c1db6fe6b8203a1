package kicktip

import "errors"

// Sentinel errors for the engine's failure taxonomy.
//
// ErrNoData marks an upstream "no data" condition; the feature resolver
// treats it as a fallback trigger, never as an engine failure.
// ErrInvariantViolation marks an internal defect (an invalid probability
// triple); the affected fixture is dropped rather than emitting bad data.
// ErrNoFixtures is the only batch-level failure surfaced to callers.
var (
	ErrNoData             = errors.New("no upstream data available")
	ErrNoFixtures         = errors.New("no fixtures found for the requested day")
	ErrInvariantViolation = errors.New("probability distribution violates invariants")
)
