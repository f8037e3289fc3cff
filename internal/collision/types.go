package collision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/agbru/hashprobe/internal/partition"
)

// DefaultProgressEvery is the number of inputs between two progress updates.
const DefaultProgressEvery = 1000

// Input is a positive integer identifier in [1..N].
type Input int64

// String returns the decimal form sent to the oracle.
func (i Input) String() string { return strconv.FormatInt(int64(i), 10) }

// HashValue is an opaque hash token. It is compared by exact byte equality
// and never parsed.
type HashValue string

// Scope tells where a collision was detected.
type Scope int

const (
	// ScopeLocal marks a collision found by a worker inside its own chunk.
	ScopeLocal Scope = iota
	// ScopeGlobal marks a collision found while merging different chunks.
	ScopeGlobal
)

// String returns "local" or "global".
func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// MarshalText encodes the scope by name.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a scope name.
func (s *Scope) UnmarshalText(b []byte) error {
	switch string(b) {
	case "local":
		*s = ScopeLocal
	case "global":
		*s = ScopeGlobal
	default:
		return fmt.Errorf("unknown collision scope %q", b)
	}
	return nil
}

// CollisionRecord pairs the first input observed for a hash with a later,
// distinct input producing the same hash.
type CollisionRecord struct {
	Hash   HashValue `json:"hash"`
	First  Input     `json:"first"`
	Second Input     `json:"second"`
	Scope  Scope     `json:"scope"`
}

// FailureRecord is a probe that failed in tolerant mode.
type FailureRecord struct {
	Input Input
	Err   error
}

// MarshalJSON renders the error as its message.
func (f FailureRecord) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Input Input  `json:"input"`
		Error string `json:"error"`
	}{f.Input, msg})
}

// WorkerResult is the single message a worker publishes when it completes.
// Ownership of Set moves to the receiver: the worker never touches it again.
type WorkerResult struct {
	Chunk           partition.Chunk
	Set             *ResultSet
	LocalCollisions int64
	Records         []CollisionRecord
	Failures        []FailureRecord
	Processed       int64
	Duration        time.Duration
}

// Report is the merged, deterministic outcome of a run.
//
// LocalCollisions and GlobalCollisions are kept apart as they were found;
// TotalCollisions is their sum, which equals Hashed - DistinctHashes: every
// hash seen for k distinct inputs contributes k-1.
type Report struct {
	Oracle           string            `json:"oracle"`
	N                int64             `json:"n"`
	Workers          int               `json:"workers"`
	Processed        int64             `json:"processed"`
	Hashed           int64             `json:"hashed"`
	DistinctHashes   int64             `json:"distinct_hashes"`
	LocalCollisions  int64             `json:"local_collisions"`
	GlobalCollisions int64             `json:"global_collisions"`
	TotalCollisions  int64             `json:"total_collisions"`
	Failures         int64             `json:"failures"`
	Collisions       []CollisionRecord `json:"collisions"`
	FailureRecords   []FailureRecord   `json:"failure_records,omitempty"`
	Duration         time.Duration     `json:"duration_ns"`
}

// CollisionRecorder observes collisions as they are found.
type CollisionRecorder interface {
	ObserveCollision(scope Scope)
}
