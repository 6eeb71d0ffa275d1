package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrGlobalFrame is returned by Pop when only the global frame remains.
var ErrGlobalFrame = errors.New("cannot pop the global scope frame")

// Scope maps variable names to their string values.
// Frames form a stack; the bottom one is the global frame and lives for the
// whole compilation. Paragraphs push and pop the frames above it.
type Scope struct {
	frames []map[string]string
}

// NewScope returns a scope holding only the global frame.
func NewScope() *Scope {
	return &Scope{frames: []map[string]string{make(map[string]string)}}
}

func (s *Scope) Push() {
	s.frames = append(s.frames, make(map[string]string))
}

func (s *Scope) Pop() error {
	if len(s.frames) <= 1 {
		return ErrGlobalFrame
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Depth returns the number of live frames, the global one included.
func (s *Scope) Depth() int {
	return len(s.frames)
}

// Define binds name in the innermost frame, replacing any earlier binding in
// that same frame. Outer frames are never touched.
func (s *Scope) Define(name, value string) {
	s.frames[len(s.frames)-1][name] = value
}

// Resolve returns the value of the nearest binding of name.
func (s *Scope) Resolve(name string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return "", false
}

// String returns a deterministically ordered dump of the frames, innermost
// last.
func (s *Scope) String() string {
	var sb strings.Builder
	for i, frame := range s.frames {
		if i == 0 {
			sb.WriteString("Global:\n")
		} else {
			fmt.Fprintf(&sb, "Frame %d:\n", i)
		}
		names := make([]string, 0, len(frame))
		for name := range frame {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %-20s  %q\n", name, frame[name])
		}
	}
	return sb.String()
}
