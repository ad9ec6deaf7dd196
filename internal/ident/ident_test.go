package ident

import "testing"

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain", "foo", true},
		{"underscore prefix", "_foo", true},
		{"digit prefix", "1foo", false},
		{"keyword", "while", false},
		{"empty", "", false},
		{"too long", string(make([]byte, 65)), false},
		{"has dash", "foo-bar", false},
		{"digits ok after first", "foo123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "too long" uses NUL bytes from make([]byte,65); patch to letters.
			in := tt.in
			if tt.name == "too long" {
				b := make([]byte, 65)
				for i := range b {
					b[i] = 'a'
				}
				in = string(b)
			}
			if got := IsValidName(in); got != tt.want {
				t.Errorf("IsValidName(%q) = %v, want %v", in, got, tt.want)
			}
		})
	}
}

func TestMakeNewIDUniquifiesOnCollision(t *testing.T) {
	tbl := NewTable()
	a := tbl.MakeNewID("tmp")
	b := tbl.MakeNewID("tmp")
	if tbl.Name(a) == tbl.Name(b) {
		t.Fatalf("expected distinct names, got %q twice", tbl.Name(a))
	}
	if tbl.Name(a) != "tmp" {
		t.Fatalf("first id should keep the bare prefix, got %q", tbl.Name(a))
	}
	if tbl.Name(b) != "tmp0" {
		t.Fatalf("second id should get suffix 0, got %q", tbl.Name(b))
	}
}

func TestTryChangeIDRejectsFixed(t *testing.T) {
	tbl := NewTable()
	main := tbl.AddFixed("main")
	if tbl.TryChangeID(main, "notmain") {
		t.Fatal("renaming a fixed id should fail")
	}
}

func TestTryChangeIDRejectsCollisionAndInvalid(t *testing.T) {
	tbl := NewTable()
	a := tbl.MakeNewID("a")
	tbl.MakeNewID("b")

	if tbl.TryChangeID(a, "b") {
		t.Fatal("renaming to an already-used name should fail")
	}
	if tbl.TryChangeID(a, "1bad") {
		t.Fatal("renaming to an invalid identifier should fail")
	}
	if !tbl.TryChangeID(a, "c") {
		t.Fatal("renaming to a fresh valid name should succeed")
	}
	if tbl.Name(a) != "c" {
		t.Fatalf("expected name c, got %q", tbl.Name(a))
	}
}

func TestResolves(t *testing.T) {
	tbl := NewTable()
	id := tbl.MakeNewID("x")
	if !tbl.Resolves(id) {
		t.Fatal("freshly created id should resolve")
	}
	if tbl.Resolves(ID(999)) {
		t.Fatal("unissued id should not resolve")
	}
}
