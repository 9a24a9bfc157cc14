package assistant

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrExamplesMissing means an example call transcript could not be read.
var ErrExamplesMissing = errors.New("assistant: example call transcript missing")

// ExampleCalls reads successful-call transcripts from a directory and keeps
// them in a TTL cache so edits on disk are picked up without a restart.
type ExampleCalls struct {
	dir   string
	names []string
	cache *cache.Cache
}

func NewExampleCalls(dir string, names []string) *ExampleCalls {
	return &ExampleCalls{
		dir:   dir,
		names: append([]string(nil), names...),
		cache: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Load returns every configured transcript in order. Any missing or empty
// file fails the whole load.
func (e *ExampleCalls) Load() ([]string, error) {
	if len(e.names) == 0 {
		return nil, fmt.Errorf("%w: none configured", ErrExamplesMissing)
	}
	out := make([]string, 0, len(e.names))
	for _, name := range e.names {
		if cached, ok := e.cache.Get(name); ok {
			out = append(out, cached.(string))
			continue
		}
		b, err := os.ReadFile(filepath.Join(e.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrExamplesMissing, name)
		}
		if err != nil {
			return nil, fmt.Errorf("read example call %s: %w", name, err)
		}
		text := strings.TrimSpace(string(b))
		if text == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrExamplesMissing, name)
		}
		e.cache.Set(name, text, cache.DefaultExpiration)
		out = append(out, text)
	}
	return out, nil
}
