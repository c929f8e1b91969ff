package system

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are matched on the base name of the
// executable followed by the arguments ("sdkmanager --list"); the longest matching prefix
// wins. Unmatched commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string][]Result
	Errors    map[string]error
	Calls     []Command
}

// NewFakeRunner returns an empty fake
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string][]Result),
		Errors:    make(map[string]error),
	}
}

// On registers a response for commands whose key starts with prefix
func (f *FakeRunner) On(prefix string, res Result) *FakeRunner {
	return f.OnSequence(prefix, res)
}

// OnSequence registers responses handed out one per call; the last one repeats
func (f *FakeRunner) OnSequence(prefix string, results ...Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[prefix] = results
	return f
}

// Fail registers a start failure for commands whose key starts with prefix
func (f *FakeRunner) Fail(prefix string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[prefix] = err
	return f
}

// CallsMatching returns the recorded invocations whose key starts with prefix
func (f *FakeRunner) CallsMatching(prefix string) []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Command
	for _, c := range f.Calls {
		if strings.HasPrefix(fakeKey(c), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Run implements Runner
func (f *FakeRunner) Run(ctx context.Context, c Command) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)

	key := fakeKey(c)
	best := ""
	for prefix := range f.Errors {
		if strings.HasPrefix(key, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return nil, f.Errors[best]
	}

	found := false
	for prefix := range f.Responses {
		if strings.HasPrefix(key, prefix) && (!found || len(prefix) > len(best)) {
			best = prefix
			found = true
		}
	}
	if !found || len(f.Responses[best]) == 0 {
		return &Result{}, nil
	}
	queue := f.Responses[best]
	res := queue[0]
	if len(queue) > 1 {
		f.Responses[best] = queue[1:]
	}
	return &res, nil
}

func fakeKey(c Command) string {
	name := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(c.Path), ".exe"), ".bat")
	return strings.TrimSpace(name + " " + strings.Join(c.Args, " "))
}
