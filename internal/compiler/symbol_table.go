package compiler

import (
	"slices"
	"sync"
)

// structTable maps struct names to the declaration that defines them
// across every parsed file.
type structTable struct {
	lock    sync.RWMutex
	structs map[string]DeferredCheck
}

// collect adds the declarations of one file. A full declaration replaces a
// forward one; otherwise the first declaration of a name wins.
func (s *structTable) collect(checks []DeferredCheck) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.structs == nil {
		s.structs = make(map[string]DeferredCheck)
	}
	for _, check := range checks {
		existing, ok := s.structs[check.Struct]
		if !ok || (existing.Forward && !check.Forward) {
			s.structs[check.Struct] = check
		}
	}
}

func (s *structTable) lookup(name string) (DeferredCheck, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	check, ok := s.structs[name]
	return check, ok
}

// names returns every known struct name in sorted order.
func (s *structTable) names() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]string, 0, len(s.structs))
	for name := range s.structs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
