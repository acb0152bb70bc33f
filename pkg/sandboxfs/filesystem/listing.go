package filesystem

import (
	"iter"
)

// Entry is one element of a directory listing: the absolute path of a child
// under the root, or the error that child produced.
type Entry struct {
	Path string
	Err  error
}

// Listing is the result of ReadDir. It is fully materialised when returned
// and is consumed by a single owner. It may be handed to another goroutine
// once, but it must not be iterated from two goroutines at the same time.
type Listing struct {
	entries []Entry
	pos     int
}

func newListing(entries []Entry) *Listing {
	return &Listing{entries: entries}
}

// Len returns the number of entries not yet consumed.
func (l *Listing) Len() int {
	return len(l.entries) - l.pos
}

// Next returns the next entry, or false once the listing is exhausted.
func (l *Listing) Next() (Entry, bool) {
	if l.pos >= len(l.entries) {
		return Entry{}, false
	}
	entry := l.entries[l.pos]
	l.pos++
	return entry, true
}

// All iterates the remaining entries, consuming them.
func (l *Listing) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			entry, ok := l.Next()
			if !ok {
				return
			}
			if !yield(entry.Path, entry.Err) {
				return
			}
		}
	}
}

// Paths drains the listing and returns the successful paths together with
// the first entry error encountered, if any.
func (l *Listing) Paths() ([]string, error) {
	paths := make([]string, 0, l.Len())
	var firstErr error
	for p, err := range l.All() {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, p)
	}
	return paths, firstErr
}
