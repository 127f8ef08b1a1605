package terminal

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per terminal cell, plus the border
	screenCols = width + 2
	screenRows = height/2 + 2

	statusY = screenRows
	logsY   = screenRows + 1

	minTermWidth  = screenCols
	minTermHeight = screenRows + 2

	logCapacity = 100
)

// Terminals only report key presses, a key is considered released when no
// press or repeat arrived for keyTimeout.
const keyTimeout = 100 * time.Millisecond

// Backend renders the screen with half block characters using tcell and
// shows the log output below it.
type Backend struct {
	screen     tcell.Screen
	config     backend.BackendConfig
	logBuffer  *LogBuffer
	on, off    tcell.Color
	held       map[string]time.Time // keypad key name -> last press or repeat
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	now        func() time.Time
}

// New creates a terminal backend on the controlling terminal.
func New() *Backend {
	return &Backend{now: time.Now}
}

// NewWithScreen creates a terminal backend drawing on screen, e.g. a tcell
// simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen, now: time.Now}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.held = make(map[string]time.Time)
	t.on = tcellColor(config.Palette.On, tcell.ColorWhite)
	t.off = tcellColor(config.Palette.Off, tcell.ColorBlack)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// the screen belongs to us now, keep the logs in memory
	t.logBuffer = NewLogBuffer(logCapacity)
	log.SetOutput(t.logBuffer)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	log.ModEmu.Info("terminal backend initialized")
	return nil
}

// Update polls the keyboard, releases expired keypad keys and renders.
func (t *Backend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	now := t.now()

	select {
	case sig := <-t.signals:
		log.ModEmu.Infof("received %s", sig)
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	for name, last := range t.held {
		if now.Sub(last) >= keyTimeout {
			delete(t.held, name)
			t.config.InputManager.HandleKey(name, event.Release)
		}
	}

	t.render(frame)
	t.screen.Show()

	events := t.eventQueue
	t.eventQueue = nil
	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	log.SetOutput(os.Stderr)
	return nil
}

// Logs returns the most recent log lines, newest first.
func (t *Backend) Logs(n int) []string {
	if t.logBuffer == nil {
		return nil
	}
	return t.logBuffer.GetRecent(n)
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		return
	}

	name := keyName(ev)
	if name == "" || t.config.InputManager == nil {
		return
	}

	if _, ok := t.config.InputManager.Bindings().Key(name); ok {
		// repeats only extend the hold
		if _, held := t.held[name]; !held {
			t.config.InputManager.HandleKey(name, event.Press)
		}
		t.held[name] = now
		return
	}

	if !t.config.InputManager.HandleKey(name, event.Press) {
		log.ModInput.Debugf("unmapped key %q", name)
	}
}

// tcellKeyNames converts tcell keys to the key names used by bindings
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyTab:    "Tab",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF3:     "F3",
	tcell.KeyF4:     "F4",
	tcell.KeyF5:     "F5",
	tcell.KeyF6:     "F6",
	tcell.KeyF7:     "F7",
	tcell.KeyF8:     "F8",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
	tcell.KeyF11:    "F11",
	tcell.KeyF12:    "F12",
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() != tcell.KeyRune {
		return tcellKeyNames[ev.Key()]
	}
	r := ev.Rune()
	if r == ' ' {
		return "Space"
	}
	return string(unicode.ToLower(r))
}

func (t *Backend) render(frame *video.Frame) {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawBorder()
	t.drawScreen(frame)
	t.drawStatus()
	t.drawLogs(termWidth, termHeight)
}

func (t *Backend) drawBorder() {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	right, bottom := screenCols-1, screenRows-1

	for x := 1; x < right; x++ {
		t.screen.SetContent(x, 0, '─', nil, style)
		t.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := 1; y < bottom; y++ {
		t.screen.SetContent(0, y, '│', nil, style)
		t.screen.SetContent(right, y, '│', nil, style)
	}
	t.screen.SetContent(0, 0, '┌', nil, style)
	t.screen.SetContent(right, 0, '┐', nil, style)
	t.screen.SetContent(0, bottom, '└', nil, style)
	t.screen.SetContent(right, bottom, '┘', nil, style)

	title := t.config.Title
	if title == "" {
		title = "CHIP-8"
	}
	t.drawText(2, 0, " "+title+" ", tcell.StyleDefault.Foreground(tcell.ColorYellow))
}

// drawScreen packs two pixel rows into each cell: the upper half block is
// drawn in the top pixel color over the bottom pixel color.
func (t *Backend) drawScreen(frame *video.Frame) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			style := tcell.StyleDefault.
				Foreground(t.pixelColor(frame[y][x])).
				Background(t.pixelColor(frame[y+1][x]))
			t.screen.SetContent(x+1, y/2+1, '▀', nil, style)
		}
	}
}

func (t *Backend) pixelColor(lit bool) tcell.Color {
	if lit {
		return t.on
	}
	return t.off
}

func (t *Backend) drawStatus() {
	if t.config.Status == nil {
		return
	}
	status := t.config.Status()

	state := "RUNNING"
	if status.Paused {
		state = "PAUSED"
	}
	sound := ""
	if status.Sounding {
		sound = " BEEP"
	}
	line := fmt.Sprintf(" %s%s  frame %d  | Space=pause F5=save F12=screenshot Esc=quit", state, sound, status.Frames)
	t.drawText(0, statusY, line, tcell.StyleDefault.Foreground(tcell.ColorSilver))
}

func (t *Backend) drawLogs(termWidth, termHeight int) {
	if t.logBuffer == nil {
		return
	}
	rows := termHeight - logsY
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, line := range t.logBuffer.GetRecent(rows) {
		if len(line) > termWidth {
			line = line[:termWidth]
		}
		t.drawText(0, logsY+i, line, style)
	}
}

func (t *Backend) drawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		t.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

func tcellColor(c color.Color, fallback tcell.Color) tcell.Color {
	if c == nil {
		return fallback
	}
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
