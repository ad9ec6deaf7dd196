// Package ident implements the program's identifier table: interned names,
// fixed/user ids, and the rename discipline described in spec.md §4.B.
package ident

import (
	"fmt"
	"strings"
)

// ID is an opaque handle into a Table. The zero value never refers to a
// live identifier.
type ID uint32

// reservedKeywords are C/C++ keywords that make_new_id and try_change_id
// must never hand out as a name.
var reservedKeywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"break": true, "continue": true, "return": true, "goto": true,
	"switch": true, "case": true, "default": true, "void": true,
	"int": true, "char": true, "float": true, "double": true, "long": true,
	"short": true, "unsigned": true, "signed": true, "const": true,
	"volatile": true, "static": true, "struct": true, "union": true,
	"enum": true, "typedef": true, "sizeof": true, "extern": true,
	"auto": true, "register": true, "class": true, "public": true,
	"private": true, "protected": true, "new": true, "delete": true,
	"try": true, "catch": true, "throw": true, "namespace": true,
	"template": true, "this": true, "virtual": true, "bool": true,
	"true": true, "false": true, "nullptr": true, "noexcept": true,
	"asm": true,
}

// MaxNameLength is the longest identifier the pretty-printer will emit.
const MaxNameLength = 64

// entry is one identifier table slot.
type entry struct {
	name  string
	fixed bool
}

// Table maps NameID <-> string, distinguishing fixed (reserved builtin)
// names from mutable ones.
type Table struct {
	entries []entry
	byName  map[string]ID
}

// NewTable returns an empty identifier table.
func NewTable() *Table {
	return &Table{byName: make(map[string]ID)}
}

// IsValidName reports whether s is usable as a C/C++ identifier: only
// alphanumerics and underscore, not starting with a digit, not a reserved
// keyword, and no longer than MaxNameLength.
func IsValidName(s string) bool {
	if s == "" || len(s) > MaxNameLength {
		return false
	}
	if reservedKeywords[s] {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isAlpha {
				return false
			}
			continue
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// AddFixed registers a reserved builtin name (e.g. "main", "malloc") and
// returns its ID. Panics if the name is already registered — fixed ids are
// meant to be added once, at program construction time.
func (t *Table) AddFixed(name string) ID {
	if _, exists := t.byName[name]; exists {
		panic(fmt.Sprintf("ident: fixed name %q already registered", name))
	}
	id := ID(len(t.entries))
	t.entries = append(t.entries, entry{name: name, fixed: true})
	t.byName[name] = id
	return id
}

// MakeNewID always returns a unique id. The textual name is prefix plus a
// monotonically increasing numeric suffix if prefix is already taken (and
// prefix itself if it is not).
func (t *Table) MakeNewID(prefix string) ID {
	name := prefix
	if _, taken := t.byName[name]; taken {
		for n := 0; ; n++ {
			candidate := fmt.Sprintf("%s%d", prefix, n)
			if _, taken := t.byName[candidate]; !taken {
				name = candidate
				break
			}
		}
	}
	id := ID(len(t.entries))
	t.entries = append(t.entries, entry{name: name})
	t.byName[name] = id
	return id
}

// TryChangeID renames id to newName. Fails if newName is already used, is
// not a valid identifier, or id is fixed.
func (t *Table) TryChangeID(id ID, newName string) bool {
	if int(id) >= len(t.entries) {
		return false
	}
	e := t.entries[id]
	if e.fixed {
		return false
	}
	if !IsValidName(newName) {
		return false
	}
	if _, taken := t.byName[newName]; taken {
		return false
	}
	delete(t.byName, e.name)
	e.name = newName
	t.entries[id] = e
	t.byName[newName] = id
	return true
}

// Name resolves id to its current textual name. Panics on an id that was
// never issued by this table — every live reference is expected to resolve
// (spec.md §3.1 invariant).
func (t *Table) Name(id ID) string {
	if int(id) >= len(t.entries) {
		panic(fmt.Sprintf("ident: unresolved NameID %d", id))
	}
	return t.entries[id].name
}

// IsFixed reports whether id is a reserved builtin identifier.
func (t *Table) IsFixed(id ID) bool {
	if int(id) >= len(t.entries) {
		return false
	}
	return t.entries[id].fixed
}

// Resolves reports whether id is a live identifier in this table.
func (t *Table) Resolves(id ID) bool {
	return int(id) < len(t.entries)
}

// Lookup returns the ID for name, if registered.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Count returns how many identifiers have ever been issued.
func (t *Table) Count() int {
	return len(t.entries)
}

// Clone returns a deep copy of t, used by Program.Clone for the
// scheduler's population (spec.md §3.6).
func (t *Table) Clone() *Table {
	clone := &Table{
		entries: append([]entry(nil), t.entries...),
		byName:  make(map[string]ID, len(t.byName)),
	}
	for k, v := range t.byName {
		clone.byName[k] = v
	}
	return clone
}

// sanityStrip is used by callers constructing candidate prefixes from
// user-influenced text (e.g. snippet labels) before calling MakeNewID.
func sanityStrip(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "v"
	}
	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "v" + out
	}
	return out
}

// SanitizedPrefix returns a version of s safe to pass to MakeNewID as a
// prefix, falling back to "v" if s has no usable characters.
func SanitizedPrefix(s string) string {
	return sanityStrip(s)
}
