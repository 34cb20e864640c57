package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsStableOrder(t *testing.T) {
	a := Defaults()
	b := Defaults()

	if a.Len() == 0 {
		t.Fatal("built-in catalog is empty")
	}
	for i, q := range a.Queries() {
		if b.Queries()[i].ID != q.ID {
			t.Fatalf("catalog order differs at %d: %s vs %s", i, q.ID, b.Queries()[i].ID)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if c.Len() != Defaults().Len() {
		t.Error("missing file should yield built-ins only")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.toml")
	content := `
[[query]]
id = "count-by-kind"
short_name = "Kind histogram"
description = "Overridden built-in"
search = "search all | count kind"

[[query]]
id = "orphaned-snapshots"
short_name = "Orphaned snapshots"
description = "Snapshots without a source volume"
search = "search is(aws_ec2_snapshot) with(empty, <-- is(aws_ec2_volume))"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.Len() != Defaults().Len()+1 {
		t.Errorf("expected one appended entry, got %d vs %d", c.Len(), Defaults().Len())
	}

	q, ok := c.Get("count-by-kind")
	if !ok || q.ShortName != "Kind histogram" {
		t.Errorf("override not applied: %+v", q)
	}
	// Override keeps the built-in's position.
	for i, def := range Defaults().Queries() {
		if c.Queries()[i].ID != def.ID {
			t.Errorf("position %d changed: %s vs %s", i, c.Queries()[i].ID, def.ID)
		}
	}

	last := c.Queries()[c.Len()-1]
	if last.ID != "orphaned-snapshots" {
		t.Errorf("new entry should append, got %s last", last.ID)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.toml")
	if err := os.WriteFile(path, []byte("not [ valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed catalog should error")
	}
}

func TestLoadEntryWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.toml")
	if err := os.WriteFile(path, []byte("[[query]]\nshort_name = \"nameless\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("entry without id should error")
	}
}
