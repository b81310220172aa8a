package ags

// valueScopes records which names are known to denote values (variables,
// parameters, functions, enumerators and imports) in each open block. A
// leading identifier that names a value cannot start a declaration.
//
// Every change is journaled so that a failed speculative parse can be rolled
// back to a mark.
type valueScopes struct {
	frames  []map[string]bool
	journal []scopeChange
}

type scopeChangeKind uint8

const (
	scopeChangeDeclare scopeChangeKind = iota
	scopeChangePush
	scopeChangePop
)

type scopeChange struct {
	kind  scopeChangeKind
	name  string
	frame map[string]bool
}

func newValueScopes() *valueScopes {
	return &valueScopes{frames: []map[string]bool{{}}}
}

func (s *valueScopes) push() {
	frame := map[string]bool{}
	s.frames = append(s.frames, frame)
	s.journal = append(s.journal, scopeChange{kind: scopeChangePush, frame: frame})
}

func (s *valueScopes) pop() {
	if len(s.frames) < 2 {
		return
	}
	frame := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.journal = append(s.journal, scopeChange{kind: scopeChangePop, frame: frame})
}

func (s *valueScopes) declare(name string) {
	frame := s.frames[len(s.frames)-1]
	if frame[name] {
		return
	}
	frame[name] = true
	s.journal = append(s.journal, scopeChange{kind: scopeChangeDeclare, name: name, frame: frame})
}

// isValue reports whether name is declared as a value in any open scope.
func (s *valueScopes) isValue(name string) bool {
	for x := len(s.frames) - 1; x >= 0; x = x - 1 {
		if s.frames[x][name] {
			return true
		}
	}
	return false
}

// commit forgets the journal. It must only be called when no speculative
// parse is in progress.
func (s *valueScopes) commit() {
	s.journal = s.journal[:0]
}

func (s *valueScopes) mark() int {
	return len(s.journal)
}

// rollback undoes every change made after mark.
func (s *valueScopes) rollback(mark int) {
	for x := len(s.journal) - 1; x >= mark; x = x - 1 {
		change := s.journal[x]
		switch change.kind {
		case scopeChangeDeclare:
			delete(change.frame, change.name)
		case scopeChangePush:
			s.frames = s.frames[:len(s.frames)-1]
		case scopeChangePop:
			s.frames = append(s.frames, change.frame)
		}
	}
	s.journal = s.journal[:mark]
}
