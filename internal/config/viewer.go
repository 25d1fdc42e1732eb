package config

import (
	"sync"
	"time"
)

// ViewerSettings holds runtime settings of the terrain viewer
type ViewerSettings struct {
	mu            sync.RWMutex
	stepBudget    time.Duration
	showInstances bool
	wireframe     bool
	orbitSpeed    float32
}

var globalViewerSettings = &ViewerSettings{
	stepBudget:    8 * time.Millisecond, // per frame
	showInstances: true,
	orbitSpeed:    0.2,
}

// GetStepBudget returns how long a generation run may work per frame
func GetStepBudget() time.Duration {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.stepBudget
}

// SetStepBudget sets the per-frame generation budget
func SetStepBudget(d time.Duration) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()

	// Clamp to reasonable values
	if d < time.Millisecond {
		d = time.Millisecond
	}
	if d > 100*time.Millisecond {
		d = 100 * time.Millisecond
	}

	globalViewerSettings.stepBudget = d
}

// GetShowInstances returns whether placed instances are drawn
func GetShowInstances() bool {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.showInstances
}

// SetShowInstances toggles instance drawing
func SetShowInstances(show bool) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	globalViewerSettings.showInstances = show
}

// GetWireframe returns whether the terrain is drawn as lines
func GetWireframe() bool {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.wireframe
}

// SetWireframe toggles wireframe drawing
func SetWireframe(enabled bool) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	globalViewerSettings.wireframe = enabled
}

// GetOrbitSpeed returns the camera orbit speed in radians per second
func GetOrbitSpeed() float32 {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.orbitSpeed
}

// SetOrbitSpeed sets the camera orbit speed, 0 stops the orbit
func SetOrbitSpeed(speed float32) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	if speed < 0 {
		speed = 0
	}
	if speed > 2 {
		speed = 2
	}
	globalViewerSettings.orbitSpeed = speed
}
