package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lselvakumaran/fixinventory/pkg/catalog"
	"github.com/lselvakumaran/fixinventory/pkg/search"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"load", "stream", "explore", "search", "export", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing %q", name)
		}
	}
}

func TestCacheDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-test", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestCacheDirDefaultsToHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestPickSourceFallsBack(t *testing.T) {
	c := New(io.Discard, LogInfo)

	if got := c.pickSource("").Name(); got != "example dataset" {
		t.Errorf("unconfigured source = %q, want example dataset", got)
	}

	c.Config.Ingest.DumpPath = filepath.Join(t.TempDir(), "missing.ndjson")
	if got := c.pickSource("").Name(); got != "example dataset" {
		t.Errorf("missing configured dump should fall back, got %q", got)
	}

	existing := filepath.Join(t.TempDir(), "graph.ndjson")
	if err := os.WriteFile(existing, []byte(`{"id":"a"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.Config.Ingest.DumpPath = existing
	if got := c.pickSource("").Name(); got != "file:"+existing {
		t.Errorf("existing configured dump not used, got %q", got)
	}

	if got := c.pickSource("/explicit/path").Name(); got != "file:/explicit/path" {
		t.Errorf("explicit path not honored, got %q", got)
	}
}

func TestExploreBackspaceTrimsWholeRune(t *testing.T) {
	idx := search.New(catalog.Defaults(), nil)
	m := exploreModel{state: &exploreState{index: idx}, term: "köln"}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(exploreModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(exploreModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(exploreModel)

	if m.term != "k" {
		t.Errorf("term = %q, want %q", m.term, "k")
	}
	if !utf8.ValidString(m.term) {
		t.Errorf("term %q is not valid UTF-8", m.term)
	}
}
