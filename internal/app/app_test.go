package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/suneung/internal/pipeline"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/screens/monitor"
)

func testRequests() []problem.Request {
	return []problem.Request{{
		Track: problem.TrackCalculus, Topic: "적분법", Tier: problem.TierHigh,
		Format: problem.FormatShortAnswer, Points: 4,
	}}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(monitor.New(testRequests()))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", cmd())
	}
}

func TestAppModel_FrameShowsMonitor(t *testing.T) {
	var model tea.Model = newAppModel(monitor.New(testRequests()))
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model, _ = model.Update(monitor.TransitionMsg{Index: 0, To: problem.StatusAccepted})

	content := model.(AppModel).frame()
	if !strings.Contains(content, "Generating") {
		t.Errorf("expected monitor title in frame:\n%s", content)
	}
	if !strings.Contains(content, "✓ 1") {
		t.Errorf("expected status in header:\n%s", content)
	}
}

func TestAppModel_BatchEventsReachCoveredMonitor(t *testing.T) {
	mon := monitor.New(testRequests())
	var model tea.Model = newAppModel(mon)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	c := problem.NewCandidate("c-1", testRequests()[0])
	model, _ = model.Update(monitor.DoneMsg{Report: &pipeline.Report{Candidates: []*problem.Candidate{c}}})

	// Open the detail screen on top of the monitor.
	model, cmd := model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	model, _ = model.Update(cmd())
	if model.(AppModel).router.Depth() != 2 {
		t.Fatal("expected detail screen on top")
	}

	model.Update(monitor.TransitionMsg{Index: 0, To: problem.StatusFailed})
	if mon.Status() != "✓ 0  ✗ 0  ! 1" {
		t.Errorf("covered monitor missed the event: %q", mon.Status())
	}
}

func TestAppModel_TooSmall(t *testing.T) {
	var model tea.Model = newAppModel(monitor.New(nil))
	model, _ = model.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if !strings.Contains(model.(AppModel).frame(), "Terminal too small") {
		t.Error("expected resize message")
	}
}
