package editorui

import (
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/wesen/stategraph/internal/statemachine"
	"github.com/wesen/stategraph/internal/watch"
	"github.com/wesen/stategraph/pkg/store"
)

type tickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// stepRun advances the runtime by one step. A finished run is replaced by
// a fresh one on the current graph.
func (m *Model) stepRun() {
	g := m.session.Graph()
	if g == nil {
		return
	}
	if m.run == nil || m.run.Done() {
		run, err := statemachine.New(g, statemachine.Options{MaxSteps: m.maxSteps, Logger: m.logger})
		if m.report("run", err) {
			return
		}
		m.run, m.runShown = run, 0
		m.print("▶ run %q", g.Name)
	}
	err := m.run.Step(m.ctx)
	m.flushOutput()
	switch {
	case err != nil:
		m.report("run", err)
	case m.run.Done():
		m.print("■ done after %d steps", m.run.StepCount)
	}
}

// flushOutput copies new run output to the console.
func (m *Model) flushOutput() {
	out := m.run.Output()
	for _, line := range out[m.runShown:] {
		m.print("  %s", line)
	}
	m.runShown = len(out)
}

func (m *Model) resetRun() {
	m.auto = false
	if m.run != nil {
		m.run = nil
		m.print("run reset")
	}
}

// ── File watching ──

type fileChangedMsg watch.Event

// waitForChange delivers the next watcher event. It returns nil once the
// watcher has stopped.
func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return fileChangedMsg(ev)
	}
}

// reload replaces the bound graph with the stored one unless they are the
// same document, which is the case after our own saves.
func (m *Model) reload() {
	if m.store == nil {
		return
	}
	g, err := m.store.Load(m.ctx, m.name)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if m.report("reload", err) {
		return
	}
	if cur := m.session.Graph(); cur != nil && store.Fingerprint(cur) == store.Fingerprint(g) {
		return
	}
	m.drag, m.pending = dragState{}, nil
	m.resetRun()
	if m.report("reload", m.session.Open(g)) {
		return
	}
	m.name = g.Name
	m.print("reloaded %q from disk", g.Name)
}
