// Package profanity holds the profanity word set and the whole-word
// matcher that scans a reconciled word stream against it.
package profanity

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"musicclean/internal/words"
)

//go:embed default_words.txt
var defaultWords string

// Set is a collection of normalized profane words. The zero value is an
// empty set ready for use; a Set is not safe for concurrent mutation.
type Set struct {
	words map[string]struct{}
}

// New returns a set containing the given entries.
func New(entries ...string) *Set {
	s := &Set{}
	s.Add(entries...)
	return s
}

// Default returns the built-in word list.
func Default() *Set {
	s, err := Load(strings.NewReader(defaultWords))
	if err != nil {
		// The embedded list is a plain string reader and cannot fail.
		panic(fmt.Sprintf("profanity: parse built-in list: %v", err))
	}
	return s
}

// Load reads one entry per line. Blank lines and lines starting with # are
// skipped.
func Load(r io.Reader) (*Set, error) {
	s := &Set{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read profanity list: %w", err)
	}
	return s, nil
}

// LoadFile reads a word list from path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profanity list: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Add inserts entries after normalization. Entries that normalize to
// nothing are ignored.
func (s *Set) Add(entries ...string) {
	for _, entry := range entries {
		key := words.Normalize(entry)
		if key == "" {
			continue
		}
		if s.words == nil {
			s.words = make(map[string]struct{})
		}
		s.words[key] = struct{}{}
	}
}

// Remove deletes entries after normalization.
func (s *Set) Remove(entries ...string) {
	for _, entry := range entries {
		delete(s.words, words.Normalize(entry))
	}
}

// Contains reports whether word, once normalized, is in the set.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	return s.containsNormalized(words.Normalize(word))
}

func (s *Set) containsNormalized(key string) bool {
	if s == nil || key == "" {
		return false
	}
	_, ok := s.words[key]
	return ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the entries in sorted order.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.words))
	for word := range s.words {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}
