package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/layout"
	"github.com/matzehuels/anchorage/pkg/pipeline"
	"github.com/matzehuels/anchorage/pkg/scene"
	"github.com/matzehuels/anchorage/pkg/text"
)

// inspectCommand creates the interactive scene inspector.
//
// The inspector resolves the scene, shows every widget's rectangle in a
// table, and re-resolves live as the viewport is resized with the arrow
// keys. Because the tree is kept alive between passes, resizing exercises
// the incremental scheduler: only widgets whose rules depend on the
// viewport actually recompute.
func (c *CLI) inspectCommand() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "inspect [scene.toml]",
		Short: "Interactively inspect resolved rectangles while resizing the viewport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			tree, viewport, layoutErrs, err := runner.Resolve(cmd.Context(), pipeline.Options{
				ScenePath: args[0],
				Width:     width,
				Height:    height,
				Logger:    c.Logger,
			})
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}

			model := newInspectModel(args[0], tree, viewport, layoutErrs)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "initial viewport width (default: scene virtual resolution)")
	cmd.Flags().Float64Var(&height, "height", 0, "initial viewport height (default: scene virtual resolution)")

	return cmd
}

// resizeStep is the viewport delta per arrow key press.
const resizeStep = 16.0

// inspectModel is the bubbletea model for the scene inspector.
type inspectModel struct {
	path      string
	tree      *scene.Tree
	sched     *layout.Scheduler
	viewport  geometry.Size
	layoutErr []string
	passes    int
}

func newInspectModel(path string, tree *scene.Tree, viewport geometry.Size, layoutErrs []string) inspectModel {
	return inspectModel{
		path:      path,
		tree:      tree,
		sched:     layout.NewScheduler(text.NewFaceMeasurer()),
		viewport:  viewport,
		layoutErr: layoutErrs,
		passes:    1,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left":
			return m.resize(-resizeStep, 0), nil
		case "right":
			return m.resize(resizeStep, 0), nil
		case "up":
			return m.resize(0, -resizeStep), nil
		case "down":
			return m.resize(0, resizeStep), nil
		}
	}
	return m, nil
}

// resize adjusts the viewport and runs another layout pass on the live tree.
func (m inspectModel) resize(dw, dh float64) inspectModel {
	vp := geometry.Size{W: m.viewport.W + dw, H: m.viewport.H + dh}
	if vp.W < resizeStep || vp.H < resizeStep {
		return m
	}
	m.viewport = vp

	m.layoutErr = m.layoutErr[:0]
	for _, err := range m.sched.Pass(m.tree, vp) {
		m.layoutErr = append(m.layoutErr, err.Error())
	}
	m.passes++
	return m
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scene Inspector"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", m.path)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ width  ↑/↓ height  q quit"))
	b.WriteString("\n\n")

	b.WriteString(StyleValue.Render(fmt.Sprintf("viewport %gx%g", m.viewport.W, m.viewport.H)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  ·  pass %d", m.passes)))
	b.WriteString("\n")

	var rows [][]string
	for _, root := range m.tree.Roots() {
		rows = collectRows(m.tree, root, 0, rows)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Widget", "Anchor", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	for _, msg := range m.layoutErr {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg) + "\n")
	}

	return b.String()
}

// collectRows walks the subtree depth-first, indenting names by depth.
// Widgets without a resolved rectangle show dashes.
func collectRows(t *scene.Tree, id scene.NodeID, depth int, rows [][]string) [][]string {
	n := t.At(id)

	name := strings.Repeat("  ", depth) + n.Name
	row := []string{name, n.Anchor.String(), "—", "—", "—", "—"}
	if rect, ok := n.Resolved(); ok {
		row = []string{
			name,
			n.Anchor.String(),
			fmt.Sprintf("%.1f", rect.X),
			fmt.Sprintf("%.1f", rect.Y),
			fmt.Sprintf("%.1f", rect.W),
			fmt.Sprintf("%.1f", rect.H),
		}
	}
	rows = append(rows, row)

	for _, child := range n.Children() {
		rows = collectRows(t, child, depth+1, rows)
	}
	return rows
}
