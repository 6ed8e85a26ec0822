package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var defaultFS embed.FS

const (
	defaultsDir = "defaults"
	promptExt   = ".txt"
)

// PromptStore serves LLM system prompts from ~/.docmatch/prompts.
//
// The first Load seeds the directory with the built-in prompts without
// overwriting user files. Each Load re-reads a file whose modification time
// changed, so edits apply to the next call. A missing, unreadable or invalid
// file yields the built-in prompt.
type PromptStore struct {
	dir      string
	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	text    string
	modTime time.Time
}

// NewPromptStore returns a store rooted at dir, or ~/.docmatch/prompts when
// dir is empty. Nothing touches the disk until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docmatch", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// DefaultPrompt returns the built-in prompt for name.
func DefaultPrompt(name string) (string, bool) {
	data, err := defaultFS.ReadFile(defaultsDir + "/" + name + promptExt)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// PromptNames lists the built-in prompt names in sorted order.
func PromptNames() []string {
	entries, err := defaultFS.ReadDir(defaultsDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), promptExt); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load returns the prompt for name.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, known := DefaultPrompt(name)

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store: %w", s.seedErr)
	}

	path := filepath.Join(s.dir, name+promptExt)
	info, err := os.Stat(path)
	if err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	text := strings.TrimSpace(string(data))
	if err := validatePrompt(name, text); err != nil {
		logger.Warn("prompt %s ignored: %v", path, err)
		if known {
			text = fallback
		}
	}

	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// Reload drops every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// seed copies the embedded defaults into dir, keeping existing files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	s.seedErr = fs.WalkDir(defaultFS, defaultsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		target := filepath.Join(s.dir, d.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		data, err := defaultFS.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("create default prompt %s: %w", d.Name(), err)
		}
		return nil
	})
}

// validatePrompt rejects edits that would break the caller's formatting.
func validatePrompt(name, text string) error {
	if text == "" {
		return errors.New("empty prompt")
	}
	switch name {
	case driven.PromptQASystem:
		verbs := strings.Count(text, "%") - 2*strings.Count(text, "%%")
		if strings.Count(text, "%d") != 1 || verbs != 1 {
			return errors.New("needs exactly one %d placeholder for the page count")
		}
	case driven.PromptExtractSkills, driven.PromptExtractJobRequirements:
		if !strings.Contains(strings.ToLower(text), "json") {
			return errors.New("must ask for a JSON reply")
		}
	}
	return nil
}
