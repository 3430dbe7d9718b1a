package workflow

import "fmt"

// BatchResult reports the outcome of applying the same transition to a
// set of selected records. There is no rollback: succeeded items stay
// applied when later items fail.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// Message renders the user-facing outcome line, e.g. "3 expense(s) approved."
func (r BatchResult) Message(verb string) string {
	return fmt.Sprintf("%d expense(s) %s.", r.Succeeded, verb)
}

// ApplyFunc applies a single-record transition and reports its outcome
type ApplyFunc func(id string) error

// ApplyBatch runs fn once per selected ID, sequentially. A failure on
// one record never blocks the remaining ones; failures are counted and
// reported, not retried.
func ApplyBatch(ids []string, fn ApplyFunc) BatchResult {
	var result BatchResult
	for _, id := range ids {
		if err := fn(id); err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result
}
