package terrain

import (
	"context"
	"fmt"
	"log"
	"time"

	"polyterrain/internal/config"
	"polyterrain/internal/meshing"
	"polyterrain/internal/placement"
)

// MeshConsumer receives finished meshes.
type MeshConsumer interface {
	ConsumeMesh(name string, md *meshing.MeshData) error
}

// Handle is a spawned instance owned by an InstanceConsumer.
type Handle interface {
	Dispose()
}

// InstanceConsumer turns placed instances into engine objects.
type InstanceConsumer interface {
	Spawn(inst placement.PlacedInstance) (Handle, error)
}

// resetter is implemented by mesh consumers that hold meshes between runs.
type resetter interface {
	Reset()
}

// Host drives one run at a time and forwards its output to the
// consumers. Starting a new run cancels the previous one and disposes of
// every handle it spawned first.
type Host struct {
	meshes    MeshConsumer
	instances InstanceConsumer
	log       *log.Logger

	run     *Run
	handles []Handle
	sent    map[string]bool
	spawned int
}

// NewHost returns a host. Either consumer may be nil.
func NewHost(meshes MeshConsumer, instances InstanceConsumer, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	return &Host{meshes: meshes, instances: instances, log: logger}
}

// Run returns the current run, or nil.
func (h *Host) Run() *Run { return h.run }

// Handles returns the number of live instance handles.
func (h *Host) Handles() int { return len(h.handles) }

// Start tears down the current run and begins a new one.
func (h *Host) Start(ctx context.Context, p config.Params, opts Options) error {
	h.Stop()
	if opts.Logger == nil {
		opts.Logger = h.log
	}
	r, err := NewRun(ctx, p, opts)
	if err != nil {
		return err
	}
	h.run = r
	return nil
}

// Stop cancels the current run and disposes of everything it spawned.
func (h *Host) Stop() {
	if h.run != nil {
		h.run.Cancel()
		h.run.Step(0)
		h.run = nil
	}
	for _, hd := range h.handles {
		hd.Dispose()
	}
	h.handles = nil
	h.sent = make(map[string]bool)
	h.spawned = 0
	if r, ok := h.meshes.(resetter); ok {
		r.Reset()
	}
}

// Step advances the run and forwards whatever it finished.
func (h *Host) Step(budget time.Duration) (Status, error) {
	if h.run == nil {
		return Done, nil
	}
	s := h.run.Step(budget)
	if err := h.forward(); err != nil {
		h.run.Cancel()
		return Failed, err
	}
	return s, h.run.Err()
}

func (h *Host) forward() error {
	gc := h.run.Context()
	if h.meshes != nil {
		send := func(name string, md *meshing.MeshData) error {
			if md == nil || h.sent[name] {
				return nil
			}
			h.sent[name] = true
			if err := h.meshes.ConsumeMesh(name, md); err != nil {
				return fmt.Errorf("could not consume mesh %s: %w", name, err)
			}
			return nil
		}
		for i, chunk := range gc.Surface {
			if err := send(fmt.Sprintf("surface_%d", i), chunk); err != nil {
				return err
			}
		}
		for _, m := range []struct {
			name string
			md   *meshing.MeshData
		}{{"base", gc.Base}, {"road", gc.RoadMesh}, {"river", gc.RiverMesh}} {
			if err := send(m.name, m.md); err != nil {
				return err
			}
		}
	}

	if h.instances == nil {
		return nil
	}
	for ; h.spawned < len(gc.Instances); h.spawned++ {
		hd, err := h.instances.Spawn(gc.Instances[h.spawned])
		if err != nil {
			return fmt.Errorf("could not spawn %s: %w", gc.Instances[h.spawned].Kind, err)
		}
		if hd != nil {
			h.handles = append(h.handles, hd)
		}
	}
	return nil
}
