package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is a declared variable.
type Symbol struct {
	Name string
	Type Type
	At   Pos // declaration site
}

// SymbolTable is the single flat namespace of a program. Blocks do not open
// scopes: a name declared anywhere is visible to every statement after it.
type SymbolTable struct {
	globals map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{globals: make(map[string]Symbol)}
}

// Declare inserts name. It reports false, leaving the table unchanged, if the
// name is already bound.
func (s *SymbolTable) Declare(name string, typ Type, at Pos) (Symbol, bool) {
	if prev, exists := s.globals[name]; exists {
		return prev, false
	}
	sym := Symbol{Name: name, Type: typ, At: at}
	s.globals[name] = sym
	return sym, true
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.globals[name]
	return sym, ok
}

func (s *SymbolTable) Len() int {
	return len(s.globals)
}

// Names returns the declared names in sorted order.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.globals))
	for name := range s.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String dumps the table one symbol per line, sorted by name.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for _, name := range s.Names() {
		sym := s.globals[name]
		fmt.Fprintf(&sb, "%-12s %-5s declared at %s\n", sym.Name, sym.Type, sym.At)
	}
	return sb.String()
}
