package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kass/go-quadgrid/pkg/cellindex"
	"github.com/kass/go-quadgrid/pkg/quadgrid"
	"github.com/kass/go-quadgrid/pkg/region"
)

const (
	demoResolution = 0.5
	madridLon      = -3.7038
	madridLat      = 40.4168
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

type stage int

const (
	stageBuilding stage = iota
	stageMasking
	stageDistances
	stageNearest
	stageDone
)

type builtMsg struct {
	grid    *quadgrid.QuadGrid
	elapsed time.Duration
}

type maskedMsg struct {
	inside  int
	areaKm2 float64
	elapsed time.Duration
}

type distancesMsg struct {
	min, mean, max float64
	elapsed        time.Duration
}

type nearestMsg struct {
	cells   []quadgrid.Cell
	elapsed time.Duration
}

type errMsg struct{ err error }

type model struct {
	stage   stage
	spinner spinner.Model
	grid    *quadgrid.QuadGrid
	lines   []string
	err     error
}

func newModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9"))
	return model{stage: stageBuilding, spinner: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, buildGrid)
}

func buildGrid() tea.Msg {
	start := time.Now()
	// Europe at half a degree.
	g, err := quadgrid.New(demoResolution, quadgrid.Bounds{
		LonFrom: -12, LonTo: 32, LatFrom: 34, LatTo: 62,
	})
	if err != nil {
		return errMsg{err}
	}
	return builtMsg{grid: g, elapsed: time.Since(start)}
}

func maskGrid(g *quadgrid.QuadGrid) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		// Rough Iberian peninsula.
		iberia, err := region.FromGeoJSON([]byte(`{
			"type": "Polygon",
			"coordinates": [[[-9.5, 36.0], [-7.0, 37.0], [-1.8, 36.7],
				[0.2, 38.8], [3.3, 41.9], [-1.8, 43.4], [-9.3, 43.0],
				[-9.5, 36.0]]]
		}`))
		if err != nil {
			return errMsg{err}
		}
		if err := g.ApplyMask(iberia, quadgrid.AutoBuffer); err != nil {
			return errMsg{err}
		}
		return maskedMsg{
			inside:  g.MaskedCount(),
			areaKm2: g.MaskedAreaKm2(),
			elapsed: time.Since(start),
		}
	}
}

func computeDistances(g *quadgrid.QuadGrid) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		dists, err := g.Distance(madridLon, madridLat)
		if err != nil {
			return errMsg{err}
		}
		return distancesMsg{
			min:     floats.Min(dists),
			mean:    stat.Mean(dists, nil),
			max:     floats.Max(dists),
			elapsed: time.Since(start),
		}
	}
}

func findNearest(g *quadgrid.QuadGrid) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ix := cellindex.New()
		if err := ix.IndexGrid(g); err != nil {
			return errMsg{err}
		}
		return nearestMsg{
			cells:   ix.NearestCells(madridLon, madridLat, 3),
			elapsed: time.Since(start),
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.stage == stageDone {
			return m, tea.Quit
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, tea.Quit

	case builtMsg:
		m.grid = msg.grid
		m.lines = append(m.lines, fmt.Sprintf("%s Built %s: %s cells in %v",
			successStyle.Render("✓"), msg.grid,
			statStyle.Render(fmt.Sprintf("%d", msg.grid.NCells())), msg.elapsed))
		m.stage = stageMasking
		return m, maskGrid(m.grid)

	case maskedMsg:
		m.lines = append(m.lines, fmt.Sprintf("%s Masked against Iberia: %s cells inside, %.0f km2 (%v)",
			successStyle.Render("✓"),
			statStyle.Render(fmt.Sprintf("%d", msg.inside)), msg.areaKm2, msg.elapsed))
		m.stage = stageDistances
		return m, computeDistances(m.grid)

	case distancesMsg:
		m.lines = append(m.lines, fmt.Sprintf("%s Distances from Madrid: min %.0f | mean %.0f | max %.0f km (%v)",
			successStyle.Render("✓"), msg.min, msg.mean, msg.max, msg.elapsed))
		m.stage = stageNearest
		return m, findNearest(m.grid)

	case nearestMsg:
		m.lines = append(m.lines, fmt.Sprintf("%s Indexed %d centroids, nearest cells to Madrid (%v):",
			successStyle.Render("✓"), m.grid.NCells(), msg.elapsed))
		for _, cell := range msg.cells {
			m.lines = append(m.lines, dimStyle.Render(fmt.Sprintf(
				"    qid %d at (%.2f, %.2f), %.1f km2",
				cell.Qid, cell.Lon, cell.Lat, cell.AreaKm2)))
		}
		m.stage = stageDone
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🌐 QuadGrid Demo"))
	b.WriteString("\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.stage {
	case stageBuilding:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), infoStyle.Render("Building grid over Europe...")))
	case stageMasking:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), infoStyle.Render("Masking against the Iberian peninsula...")))
	case stageDistances:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), infoStyle.Render("Computing centroid distances from Madrid...")))
	case stageNearest:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), infoStyle.Render("Indexing centroids...")))
	case stageDone:
		b.WriteString(boxStyle.Render(
			subtitleStyle.Render("All stages complete.") + "\n" +
				dimStyle.Render("Press any key to exit.")))
	}
	b.WriteString("\n")
	return b.String()
}

func main() {
	if _, err := tea.NewProgram(newModel()).Run(); err != nil {
		log.Fatalf("demo failed: %v", err)
	}
}
