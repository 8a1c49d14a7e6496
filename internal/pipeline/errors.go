package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Stage names used to tag errors with their origin.
const (
	StagePersistence  = "persistence"
	StageRequirements = "requirements-extraction"
	StageScoring      = "relevance-scoring"
	StagePlanning     = "structure-planning"
	StageGeneration   = "content-generation"
	StageValidation   = "content-validation"
	StageImport       = "profile-import"
)

// StageError wraps a stage failure with the originating stage name and
// serializable context, so operators can tell bad input from upstream
// flakiness.
type StageError struct {
	Stage   string
	Err     error
	Context map[string]string
}

func (e *StageError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, strings.Join(pairs, " "), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageError(stage string, err error, kv ...string) *StageError {
	se := &StageError{Stage: stage, Err: err}
	if len(kv) > 0 {
		se.Context = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			se.Context[kv[i]] = kv[i+1]
		}
	}
	return se
}

// terminalError marks an error as not worth retrying: bad input, missing
// referenced records, or content that failed validation after the bounded
// regeneration. The task runner fails such tasks immediately.
type terminalError struct {
	err error
}

func (e *terminalError) Error() string { return e.err.Error() }
func (e *terminalError) Unwrap() error { return e.err }

// Terminal wraps err so the retry policy treats it as unrecoverable.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// IsTerminal reports whether err carries a terminal marker anywhere in
// its chain.
func IsTerminal(err error) bool {
	var te *terminalError
	return errors.As(err, &te)
}
