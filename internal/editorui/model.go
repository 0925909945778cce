// Package editorui is the terminal graph editor: a Bubble Tea model that
// draws the bound graph with its ports and edges, and turns keys and mouse
// gestures into graphview operations. A side panel shows the selected
// node, the run variables, a console and key help.
package editorui

import (
	"context"
	"fmt"
	"image"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/wesen/stategraph/internal/statemachine"
	"github.com/wesen/stategraph/internal/watch"
	"github.com/wesen/stategraph/pkg/graphview"
	"github.com/wesen/stategraph/pkg/log"
	"github.com/wesen/stategraph/pkg/nodekind"
	"github.com/wesen/stategraph/pkg/store"
)

// Tool is the current interaction mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolAdd
	ToolConnect
	ToolPort
)

var toolNames = map[Tool]string{
	ToolSelect:  "SELECT",
	ToolAdd:     "ADD",
	ToolConnect: "CONNECT",
	ToolPort:    "PORT",
}

func (t Tool) String() string { return toolNames[t] }

const maxConsole = 200

// Options wires the model to its collaborators. Session is required.
type Options struct {
	Session *graphview.Session
	// Store and Name are used to reload the graph when Watcher reports a
	// change on disk.
	Store     store.Store
	Name      string
	Watcher   *watch.Watcher
	MaxSteps  int
	AutoSpeed time.Duration
	Logger    log.Logger
}

type dragState struct {
	active bool
	id     string
	off    image.Point // grab point relative to the node origin
	start  image.Point
	pos    image.Point
}

// Model is the editor state.
type Model struct {
	Width, Height  int
	MouseX, MouseY int
	Cam            image.Point

	ctx     context.Context
	session *graphview.Session
	store   store.Store
	name    string
	watcher *watch.Watcher
	logger  log.Logger

	tool    Tool
	addKind string
	drag    dragState
	pending *graphview.Port // connect source

	run       *statemachine.Machine
	runShown  int // run output lines already copied to the console
	auto      bool
	autoSpeed time.Duration
	maxSteps  int

	console []string
	menu    menuState
	edit    editState
}

// New creates the editor model. ctx bounds store calls and runs.
func New(ctx context.Context, opts Options) Model {
	if opts.AutoSpeed <= 0 {
		opts.AutoSpeed = 400 * time.Millisecond
	}
	m := Model{
		ctx:       ctx,
		session:   opts.Session,
		store:     opts.Store,
		name:      opts.Name,
		watcher:   opts.Watcher,
		logger:    log.Or(opts.Logger),
		addKind:   nodekind.KindState,
		autoSpeed: opts.AutoSpeed,
		maxSteps:  opts.MaxSteps,
	}
	if g := m.session.Graph(); g != nil {
		m.name = g.Name
		m.print("opened %q: %d nodes", g.Name, g.Len())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForChange(m.watcher)
}

// Tool returns the active tool.
func (m Model) Tool() Tool { return m.tool }

// Console returns the console lines, oldest first.
func (m Model) Console() []string { return m.console }

func (m *Model) print(format string, v ...any) {
	m.console = append(m.console, fmt.Sprintf(format, v...))
	if n := len(m.console); n > maxConsole {
		m.console = m.console[n-maxConsole:]
	}
}

// report puts a rejected gesture on the console.
func (m *Model) report(what string, err error) bool {
	if err == nil {
		return false
	}
	m.print("✗ %s: %v", what, err)
	m.logger.Debug("%s rejected: %v", what, err)
	return true
}

// execID is the node the run is currently in, or "".
func (m Model) execID() string {
	if m.run == nil || m.run.Current() == nil {
		return ""
	}
	return m.run.Current().ID
}

func (m Model) selectedID() string {
	if n := m.session.Selected(); n != nil {
		return n.ID
	}
	return ""
}

func (m *Model) setTool(t Tool) {
	m.tool = t
	m.pending = nil
}
