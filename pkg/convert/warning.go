package convert

import (
	"fmt"
	"sort"
	"sync"
)

// Warning kinds.
const (
	WarnWordLength        = "word-length"
	WarnCharDecomposition = "char-decomposition"
	WarnBrokenBitmap      = "broken-bitmap"
)

// Warning reports data that converts but looks wrong.
type Warning struct {
	File    string
	Kind    string
	Subject string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.File, w.Kind, w.Subject)
}

func warn(list []Warning, file, kind, subject string) []Warning {
	w := Warning{File: file, Kind: kind, Subject: subject}
	tracer().Infof("%s", w)
	return append(list, w)
}

// warnings collects the warnings of concurrent conversions.
type warnings struct {
	mu   sync.Mutex
	list []Warning
}

func (c *warnings) add(ws []Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, ws...)
}

// sorted returns the collected warnings ordered by file, keeping the order
// of warnings within one file.
func (c *warnings) sorted() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]Warning(nil), c.list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}
