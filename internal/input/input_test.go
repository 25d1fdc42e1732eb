package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestKeyEdges(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(glfw.KeyR, glfw.Press)
	if !im.JustPressed(ActionRegenerate) || !im.IsActive(ActionRegenerate) {
		t.Fatalf("Expected R to press regenerate")
	}
	im.PostUpdate()
	if im.JustPressed(ActionRegenerate) {
		t.Errorf("Expected the edge to clear after PostUpdate")
	}
	im.HandleKeyEvent(glfw.KeyR, glfw.Repeat)
	if im.JustPressed(ActionRegenerate) {
		t.Errorf("Expected a repeat not to count as a new press")
	}
	im.HandleKeyEvent(glfw.KeyR, glfw.Release)
	if !im.JustReleased(ActionRegenerate) || im.IsActive(ActionRegenerate) {
		t.Errorf("Expected release edge")
	}
}

func TestSharedAction(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if !im.IsActive(ActionZoomIn) {
		t.Errorf("Expected Up to zoom in")
	}
	im.HandleKeyEvent(glfw.KeyQ, glfw.Press)
	for a := Action(0); a < ActionCount; a++ {
		if a != ActionZoomIn && im.IsActive(a) {
			t.Errorf("Unbound key activated action %d", a)
		}
	}
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	if !im.JustPressed(ActionMouseLeft) {
		t.Errorf("Expected left click")
	}
	if im.IsActive(ActionCount) {
		t.Errorf("Expected out of range actions to be inactive")
	}
}
