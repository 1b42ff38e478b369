package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Teleoperate a cube from the keyboard",
	Long: `Start an interactive TUI that drives the nearest cube.

Keyboard controls:
  up/k     - forward
  down/j   - backward
  left/h   - turn left
  right/l  - turn right
  space    - stop
  +/-      - adjust speed
  q/Esc    - quit`,
	RunE: runDrive,
}

func init() {
	rootCmd.AddCommand(driveCmd)
}

// Styles
var (
	driveTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	driveStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	driveActionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("82"))

	driveWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	driveHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Messages
type driveTickMsg time.Time
type cubeEventMsg struct{ ev toio.Event }
type cubeDroppedMsg struct{}

// Model
type driveModel struct {
	cube   *toio.Cube
	events <-chan toio.Event
	unsub  func()

	speed    int
	action   string
	battery  int
	pos      toio.Position
	havePos  bool
	dropped  bool
	quitting bool
}

func newDriveModel(cube *toio.Cube, speed int) *driveModel {
	events, unsub := cube.Events()
	return &driveModel{
		cube:    cube,
		events:  events,
		unsub:   unsub,
		speed:   speed,
		action:  "stopped",
		battery: cube.Battery(),
	}
}

func (m *driveModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), driveTick())
}

func driveTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return driveTickMsg(t)
	})
}

func (m *driveModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return cubeDroppedMsg{}
		}
		return cubeEventMsg{ev: ev}
	}
}

func (m *driveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case cubeEventMsg:
		switch ev := msg.ev.(type) {
		case toio.BatteryEvent:
			m.battery = ev.Level
		case toio.PositionEvent:
			m.pos = ev.Position
			m.havePos = true
		case toio.PositionMissedEvent:
			m.havePos = false
		}
		return m, m.waitForEvent()

	case cubeDroppedMsg:
		m.dropped = true
		m.quitting = true
		return m, tea.Quit

	case driveTickMsg:
		return m, driveTick()
	}

	return m, nil
}

func (m *driveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.cube.Stop()
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.drive("forward", m.speed, m.speed)
	case "down", "j":
		m.drive("backward", -m.speed, -m.speed)
	case "left", "h":
		m.drive("turning left", -m.speed/2, m.speed/2)
	case "right", "l":
		m.drive("turning right", m.speed/2, -m.speed/2)
	case " ":
		m.cube.Stop()
		m.action = "stopped"

	case "+", "=":
		if m.speed+10 <= toio.MaxSpeed {
			m.speed += 10
		}
	case "-":
		if m.speed-10 >= 10 {
			m.speed -= 10
		}
	}
	return m, nil
}

func (m *driveModel) drive(action string, left, right int) {
	if err := m.cube.Go(left, right); err != nil {
		m.action = fmt.Sprintf("error: %v", err)
		return
	}
	m.action = action
}

func (m *driveModel) View() string {
	if m.quitting {
		if m.dropped {
			return driveWarnStyle.Render("Connection lost.") + "\n"
		}
		return "Bye.\n"
	}

	var b strings.Builder
	b.WriteString(driveTitleStyle.Render(fmt.Sprintf("Driving %s", m.cube.Name())))
	b.WriteString("\n\n")
	b.WriteString(driveActionStyle.Render(m.action))
	b.WriteString("\n\n")

	battery := "battery: ?"
	if m.battery >= 0 {
		battery = fmt.Sprintf("battery: %d%%", m.battery)
	}
	position := "position: off the mat"
	if m.havePos {
		position = fmt.Sprintf("position: (%d, %d) heading %d°", m.pos.X, m.pos.Y, m.pos.Angle)
	}
	b.WriteString(driveStatusStyle.Render(fmt.Sprintf("speed: %d   %s   %s", m.speed, battery, position)))
	b.WriteString("\n\n")
	b.WriteString(driveHelpStyle.Render("arrows/hjkl: drive  space: stop  +/-: speed  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func runDrive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	model := newDriveModel(cube, cfg.Drive.Speed)
	defer model.unsub()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("drive error: %w", err)
	}
	return nil
}
