package corpusdb

import "testing"

func TestResolveDriverNameNormalizesAliases(t *testing.T) {
	cases := map[string]string{
		"sqlite":     "sqlite",
		"sqlite3":    "sqlite",
		"":           "sqlite",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"mysql":      "mysql",
		"sqlserver":  "sqlserver",
		"mssql":      "sqlserver",
	}
	for in, want := range cases {
		got, err := resolveDriverName(in)
		if err != nil {
			t.Fatalf("resolveDriverName(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("resolveDriverName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveDriverNameRejectsUnknown(t *testing.T) {
	if _, err := resolveDriverName("oracle"); err == nil {
		t.Fatal("expected an error for an unsupported driver name")
	}
}
