// Package pool persists the ordered set of message IDs not currently
// assigned to a live message. IDs are handed out in file order (the seeded
// ascending range first, reclaimed IDs appended behind it) so allocation is
// deterministic and every released ID is eventually recycled.
package pool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bbs/pkg/logger"
	"bbs/pkg/state"
)

// ErrExhausted signals an acquire against an empty pool. The board service
// checks capacity before acquiring, so hitting this indicates the live
// counter and the pool have diverged.
var ErrExhausted = errors.New("id pool exhausted")

// Pool is the persisted identifier pool. Not safe for concurrent use; the
// board runs one operation at a time by design.
type Pool struct {
	path string
	ids  []int
}

// Seed creates a fresh pool holding 1..max and persists it, replacing any
// previous pool file at path.
func Seed(path string, max int) (*Pool, error) {
	if max <= 0 {
		return nil, fmt.Errorf("pool capacity must be positive, got %d", max)
	}
	p := &Pool{path: path, ids: make([]int, 0, max)}
	for id := 1; id <= max; id++ {
		p.ids = append(p.ids, id)
	}
	if err := p.persist(); err != nil {
		return nil, err
	}
	logger.Info("pool_seeded", "path", path, "capacity", max)
	return p, nil
}

// Open loads a previously persisted pool from path.
func Open(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool file: %w", err)
	}
	defer f.Close()

	p := &Pool{path: path}
	seen := map[int]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("corrupt pool file %s: %q: %w", path, line, err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("corrupt pool file %s: duplicate id %d", path, id)
		}
		seen[id] = struct{}{}
		p.ids = append(p.ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	logger.Debug("pool_loaded", "path", path, "available", len(p.ids))
	return p, nil
}

// Acquire pops the next available ID and persists the remainder.
func (p *Pool) Acquire() (int, error) {
	if len(p.ids) == 0 {
		return 0, ErrExhausted
	}
	id := p.ids[0]
	p.ids = p.ids[1:]
	if err := p.persist(); err != nil {
		// put it back so in-memory state matches disk
		p.ids = append([]int{id}, p.ids...)
		return 0, err
	}
	return id, nil
}

// Release returns id to the tail of the pool and persists. Releasing an ID
// that is already available would break the no-duplicates invariant, so it
// is rejected.
func (p *Pool) Release(id int) error {
	for _, v := range p.ids {
		if v == id {
			return fmt.Errorf("id %d is already in the pool", id)
		}
	}
	p.ids = append(p.ids, id)
	if err := p.persist(); err != nil {
		p.ids = p.ids[:len(p.ids)-1]
		return err
	}
	return nil
}

// Len reports how many IDs are currently available.
func (p *Pool) Len() int { return len(p.ids) }

func (p *Pool) persist() error {
	return state.WriteFileAtomic(p.path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, id := range p.ids {
			if _, err := fmt.Fprintln(bw, id); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}
