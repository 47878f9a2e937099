package scheduler

import (
	"reflect"
	"testing"

	"github.com/gopad-fw/joypad/pkg/iface"
)

type fakeApp struct{ ran bool }

func (a *fakeApp) Task() { a.ran = true }

func TestTickOrderIsFixed(t *testing.T) {
	var stages []string
	app := &fakeApp{}

	s := &Scheduler{
		Outputs: []iface.Output{
			{Name: "gamepad", Task: func() {}},
		},
		App: app,
		Inputs: []iface.Input{
			{Name: "usbhost", Task: func() {}},
		},
		Trace: func(stage string) { stages = append(stages, stage) },
	}

	s.Tick()

	want := []string{"leds", "players", "storage", "output:gamepad", "app", "input:usbhost"}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stage order = %v, want %v", stages, want)
	}
	if !app.ran {
		t.Error("expected app.Task to run")
	}
}

func TestTickToleratesAllNilStages(t *testing.T) {
	s := New()
	s.Tick() // must not panic with every field empty
}

func TestTickRunsEveryOutputAndInputInOrder(t *testing.T) {
	var ran []string
	s := &Scheduler{
		Outputs: []iface.Output{
			{Name: "a", Task: func() { ran = append(ran, "a") }},
			{Name: "b", Task: func() { ran = append(ran, "b") }},
		},
		Inputs: []iface.Input{
			{Name: "x", Task: func() { ran = append(ran, "x") }},
			{Name: "y", Task: func() { ran = append(ran, "y") }},
		},
	}

	s.Tick()

	want := []string{"a", "b", "x", "y"}
	if !reflect.DeepEqual(ran, want) {
		t.Errorf("ran = %v, want %v", ran, want)
	}
}

func TestActiveOutputPassedToPlayersAndFeedback(t *testing.T) {
	active := &iface.Output{Name: "gamepad"}
	s := &Scheduler{
		ActiveOutput: func() *iface.Output { return active },
	}
	s.Tick() // must not panic resolving ActiveOutput with nil Players/Feedback
}
