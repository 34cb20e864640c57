package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/camera"
	"github.com/lselvakumaran/fixinventory/pkg/catalog"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/search"
	"github.com/lselvakumaran/fixinventory/pkg/session"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var dump string

	cmd := &cobra.Command{
		Use:   "explore [dump-file]",
		Short: "Open an interactive explore session",
		Long: `Explore ingests a snapshot and opens a terminal session: type to search,
enter flies the camera to the selected node, +/- zooms, esc backs out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			if len(args) == 1 {
				dump = args[0]
			}
			cat, err := catalog.Load(c.Config.Ingest.QueryCatalog)
			if err != nil {
				return err
			}

			state := &exploreState{}
			cam := camera.New(camera.Options{
				MinZoom:       c.Config.Camera.MinZoom,
				MaxZoom:       c.Config.Camera.MaxZoom,
				DefaultZoom:   c.Config.Camera.DefaultZoom,
				MomentumDecay: c.Config.Camera.MomentumDecay,
			}, logger, camera.WithInfoReady(func(id string) { state.info = id }))
			idx := search.New(cat, logger,
				search.WithResults(func(r *search.Results) {
					state.results = r
					state.cursor = 0
				}),
				search.WithSelectNode(func(id string) {
					if _, err := cam.FocusOnNode(id); err != nil {
						state.status = err.Error()
					}
				}),
				search.WithSelectQuery(func(q catalog.Query) {
					state.status = "query: " + q.Search
				}),
			)
			mgr := session.NewManager(cam, idx, logger)

			sess := mgr.Begin()
			snap, err := c.runIngest(cmd, sess, c.pickSource(dump))
			if err != nil {
				return err
			}
			sess.SetPositions(c.applyLayout(cmd, snap, ""))
			mgr.Attach(snap)
			state.camera = cam
			state.index = idx
			state.snap = snap

			model := exploreModel{state: state, lastTick: time.Now()}
			prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			cam.SetActive(false)
			return err
		},
	}

	cmd.Flags().StringVarP(&dump, "dump", "d", "", "dump file to explore (default from config)")
	return cmd
}

// =============================================================================
// Explore TUI
// =============================================================================

// tickInterval drives the camera step and search debounce.
const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// exploreState is shared mutable state behind the value-copied model. The
// bubbletea loop is single-threaded, so no locking is needed.
type exploreState struct {
	camera  *camera.Controller
	index   *search.Index
	snap    *graph.Snapshot
	results *search.Results
	cursor  int
	info    string // node whose detail panel is open
	status  string
}

// exploreModel is the bubbletea model for the explore session.
type exploreModel struct {
	state    *exploreState
	term     string
	lastTick time.Time
	width    int
	height   int
}

func (m exploreModel) Init() tea.Cmd {
	return tick()
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		dt := now.Sub(m.lastTick).Seconds()
		m.lastTick = now
		s.camera.Step(dt)
		s.index.Tick()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			switch {
			case s.info != "" || s.camera.FocusTarget() != "":
				s.camera.HideInfo()
				s.info = ""
			case m.term != "":
				m.term = ""
				s.index.Input("")
			default:
				return m, tea.Quit
			}

		case "enter":
			if e := s.selectedEntry(); e != nil {
				s.status = ""
				e.Select()
			}

		case "up":
			if s.cursor > 0 {
				s.cursor--
			}

		case "down":
			if s.cursor < s.resultCount()-1 {
				s.cursor++
			}

		case "+", "=":
			s.camera.Zoom(-5)

		case "-":
			s.camera.Zoom(+5)

		case "backspace":
			if m.term != "" {
				_, size := utf8.DecodeLastRuneInString(m.term)
				m.term = m.term[:len(m.term)-size]
				s.index.Input(m.term)
			}

		default:
			if msg.Type == tea.KeyRunes {
				m.term += string(msg.Runes)
				s.index.Input(m.term)
			}
		}
	}
	return m, nil
}

// resultCount returns the number of selectable entries (nodes then queries).
func (s *exploreState) resultCount() int {
	if s.results == nil {
		return 0
	}
	return len(s.results.Nodes) + len(s.results.Queries)
}

// selectedEntry returns the entry under the cursor.
func (s *exploreState) selectedEntry() *search.Entry {
	if s.results == nil {
		return nil
	}
	if s.cursor < len(s.results.Nodes) {
		return s.results.Nodes[s.cursor]
	}
	if i := s.cursor - len(s.results.Nodes); i < len(s.results.Queries) {
		return s.results.Queries[i]
	}
	return nil
}

func (m exploreModel) View() string {
	s := m.state
	var b strings.Builder

	b.WriteString(StyleTitle.Render("fixexplorer"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d nodes · %d edges",
		s.snap.NodeCount(), s.snap.EdgeCount())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("type to search  ⏎ fly to node  +/- zoom  esc back  ctrl+c quit"))
	b.WriteString("\n\n")

	b.WriteString(StyleHighlight.Render("search: "))
	b.WriteString(StyleValue.Render(m.term))
	b.WriteString(StyleHighlight.Render("▏"))
	b.WriteString("\n\n")

	if !s.results.Empty() {
		m.viewResults(&b)
	} else if m.term != "" {
		b.WriteString(StyleDim.Render("  no matches"))
		b.WriteString("\n")
	}

	if s.info != "" {
		m.viewInfo(&b)
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	return b.String()
}

// viewResults renders the two result panels.
func (m exploreModel) viewResults(b *strings.Builder) {
	s := m.state
	line := func(i int, label, detail string) {
		cursor := "  "
		style := StyleValue
		if i == s.cursor {
			cursor = "▸ "
			style = styleSelected
		}
		b.WriteString(cursor + style.Render(label))
		if detail != "" {
			b.WriteString("  " + StyleDim.Render(detail))
		}
		b.WriteString("\n")
	}

	if len(s.results.Nodes) > 0 {
		b.WriteString(StyleDim.Render("nodes"))
		b.WriteString("\n")
		for i, e := range s.results.Nodes {
			line(i, e.Label, e.Detail)
		}
	}
	if len(s.results.Queries) > 0 {
		b.WriteString(StyleDim.Render("queries"))
		b.WriteString("\n")
		for i, e := range s.results.Queries {
			line(len(s.results.Nodes)+i, e.Label, e.Detail)
		}
	}
}

// viewInfo renders the focused node's detail panel.
func (m exploreModel) viewInfo(b *strings.Builder) {
	node := m.state.snap.Node(m.state.info)
	if node == nil {
		return
	}
	b.WriteString("\n")
	b.WriteString(StyleTitle.Render(node.DisplayName()))
	b.WriteString("\n")
	b.WriteString("  " + StyleDim.Render("kind") + "  " + StyleValue.Render(node.Reported.Kind))
	b.WriteString("\n")
	b.WriteString("  " + StyleDim.Render("id") + "    " + StyleValue.Render(node.ID))
	b.WriteString("\n")
	if n := len(node.Reported.Extra); n > 0 {
		b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%d reported fields", n)))
		b.WriteString("\n")
	}
}

// viewStatus renders the camera status line.
func (m exploreModel) viewStatus() string {
	s := m.state
	pos := s.camera.Position()
	status := fmt.Sprintf("%s · fov %.0f · (%.0f, %.0f, %.0f)",
		s.camera.Mode(), s.camera.FOV(), pos.X, pos.Y, pos.Z)
	if target := s.camera.FocusTarget(); target != "" {
		status += " · " + target
	}
	if s.status != "" {
		status += "  " + StyleWarning.Render(s.status)
	}
	return StyleDim.Render(status)
}
