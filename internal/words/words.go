// internal/words/words.go
package words

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

//go:embed words.txt
var defaultList string

// Source supplies secret words for drawing turns. Safe for concurrent use by
// independent rooms.
type Source struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand
}

// Load builds a Source from a newline-delimited word file, or from the
// embedded default list when path is empty.
func Load(path string) (*Source, error) {
	var list []string
	var err error
	if path == "" {
		list, err = scanWords(strings.NewReader(defaultList))
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open word list %s: %w", path, err)
		}
		defer f.Close()
		list, err = scanWords(f)
	}
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return &Source{
		words: list,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Pick returns a random word from the list.
func (s *Source) Pick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words[s.rng.Intn(len(s.words))]
}

// Count reports how many words are loaded.
func (s *Source) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.words)
}

func scanWords(r io.Reader) ([]string, error) {
	var list []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			list = append(list, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return list, nil
}
