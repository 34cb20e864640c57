// Package camera drives the explorer's view state: a small state machine over
// camera position and field of view, fed by pointer input and focus requests.
//
// # Architecture
//
// The controller is single-threaded: the owner calls input methods (StartDrag,
// Drag, Zoom, FocusOnNode, ...) and advances time with Step(dt) from its tick
// loop. All animated motion runs as cancellable interpolation tasks; starting
// a new transition cancels everything in flight, so the camera never blends
// two targets.
//
// # States
//
//	Idle ──press──▶ Dragging ──release──▶ momentum ──▶ Idle
//	Idle ──zoom───▶ ZoomAnimating ──▶ Idle
//	any  ──focus──▶ FocusAnimating ──▶ Focused ──hide info──▶ Idle
//
// Zooming while Focused stays Focused; only leaving the info view or loading
// a new snapshot drops the focus.
package camera

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
)

// Mode is the controller's current state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeZoomAnimating
	ModeFocusAnimating
	ModeFocused
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeZoomAnimating:
		return "zoom-animating"
	case ModeFocusAnimating:
		return "focus-animating"
	case ModeFocused:
		return "focused"
	}
	return "unknown"
}

// Button identifies which pointer button drives a drag.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Options configures camera behavior.
type Options struct {
	// MinZoom and MaxZoom bound the field of view in degrees.
	MinZoom float64
	MaxZoom float64

	// DefaultZoom is the resting field of view.
	DefaultZoom float64

	// FocusZoom is the close-up field of view reached by a fly-to.
	FocusZoom float64

	// FocusOffset displaces the camera from a focused node so it frames the
	// node instead of sitting inside it.
	FocusOffset graph.Vector3

	// DragSmoothing is the exponential-smoothing rate pulling the drag
	// velocity toward each frame's pointer delta.
	DragSmoothing float64

	// MomentumDecay is the per-second multiplicative velocity decay after
	// the drag button is released.
	MomentumDecay float64

	// FreshSelectionWindow is how long, in seconds, a new focus suppresses
	// drag input so a stray gesture can't hijack the fly-to.
	FreshSelectionWindow float64
}

func (o Options) withDefaults() Options {
	if o.MinZoom == 0 {
		o.MinZoom = 20
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = 90
	}
	if o.DefaultZoom == 0 {
		o.DefaultZoom = 70
	}
	if o.FocusZoom == 0 {
		o.FocusZoom = 40
	}
	if o.FocusOffset == (graph.Vector3{}) {
		o.FocusOffset = graph.Vector3{Y: 40, Z: 120}
	}
	if o.DragSmoothing == 0 {
		o.DragSmoothing = 0.25
	}
	if o.MomentumDecay == 0 {
		o.MomentumDecay = 0.01
	}
	if o.FreshSelectionWindow == 0 {
		o.FreshSelectionWindow = 0.4
	}
	return o
}

// Flight duration bounds: camera-to-target distance is clamped to
// [minFlightDist, maxFlightDist] world units and remapped linearly onto
// [minFlightDur, maxFlightDur] seconds.
const (
	minFlightDist = 100.0
	maxFlightDist = 1000.0
	minFlightDur  = 0.35
	maxFlightDur  = 1.5

	// velocityEpsilon is the momentum magnitude below which a released drag
	// settles back to idle.
	velocityEpsilon = 0.05
)

// Controller owns the camera state for one explorer. It persists across load
// sessions; only its focus target is tied to a snapshot's lifetime.
//
// Not safe for concurrent use; the owner's tick loop is the single caller.
type Controller struct {
	opts   Options
	logger *log.Logger

	mode   Mode
	active bool

	position graph.Vector3
	fov      float64
	// fovTarget accumulates zoom steps so repeated inputs compose instead of
	// re-aiming at the current mid-animation value.
	fovTarget float64

	snapshot    *graph.Snapshot
	focusTarget string

	held       bool
	button     Button
	frameDelta graph.Vector3
	velocity   graph.Vector3
	freshTimer float64

	tweens runner

	// onInfoReady tells the presentation layer a focused node's details can
	// be shown. Suppressed while inactive.
	onInfoReady func(nodeID string)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithInfoReady registers the focus-completion callback.
func WithInfoReady(fn func(nodeID string)) Option {
	return func(c *Controller) { c.onInfoReady = fn }
}

// New creates an active controller at the default zoom.
func New(opts Options, logger *log.Logger, options ...Option) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	opts = opts.withDefaults()
	c := &Controller{
		opts:      opts,
		logger:    logger,
		active:    true,
		fov:       opts.DefaultZoom,
		fovTarget: opts.DefaultZoom,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Mode returns the current state.
func (c *Controller) Mode() Mode { return c.mode }

// FOV returns the current field of view.
func (c *Controller) FOV() float64 { return c.fov }

// Position returns the current camera position.
func (c *Controller) Position() graph.Vector3 { return c.position }

// FocusTarget returns the focused node's ID, or "".
func (c *Controller) FocusTarget() string { return c.focusTarget }

// Active reports whether the controller processes transitions.
func (c *Controller) Active() bool { return c.active }

// SetActive toggles the controller. While inactive no transitions occur and
// no completion callbacks fire, so signals arriving after the owner tore the
// view down are ignored.
func (c *Controller) SetActive(active bool) { c.active = active }

// SetSnapshot attaches the snapshot whose nodes can be focused. Passing nil
// (or a new snapshot) clears any focus state owned by the previous one.
func (c *Controller) SetSnapshot(snap *graph.Snapshot) {
	c.clearSelection()
	c.focusTarget = ""
	c.snapshot = snap
	if c.mode == ModeFocusAnimating || c.mode == ModeFocused {
		c.tweens.cancelAll()
		c.mode = ModeIdle
	}
}

// ===== Drag =====

// StartDrag begins a pointer drag. Refused while inactive, while a fly-to is
// in flight, or while a selection is still fresh.
func (c *Controller) StartDrag(btn Button) bool {
	if !c.active || c.mode == ModeFocusAnimating || c.freshTimer > 0 {
		return false
	}
	c.mode = ModeDragging
	c.held = true
	c.button = btn
	c.frameDelta = graph.Vector3{}
	return true
}

// Drag records this frame's pointer delta. Only meaningful while the drag
// button is held.
func (c *Controller) Drag(delta graph.Vector3) {
	if !c.active || !c.held {
		return
	}
	c.frameDelta = delta
}

// EndDrag releases the drag button. Remaining velocity decays as momentum;
// the controller returns to idle once it is negligible.
func (c *Controller) EndDrag() {
	if !c.held {
		return
	}
	c.held = false
	c.frameDelta = graph.Vector3{}
	if c.velocity.Length() < velocityEpsilon {
		c.velocity = graph.Vector3{}
		c.mode = ModeIdle
	}
}

// ===== Zoom =====

// Zoom starts an animated field-of-view change by delta degrees. The target
// is clamped to [MinZoom, MaxZoom]; any in-flight interpolation is cancelled
// first. Zooming while a node is focused adjusts the framing but keeps the
// focus: the mode stays Focused so HideInfo can still leave it.
func (c *Controller) Zoom(delta float64) {
	if !c.active || c.mode == ModeDragging || c.mode == ModeFocusAnimating {
		return
	}
	c.tweens.cancelAll()
	c.fovTarget = c.clampFOV(c.fovTarget + delta)
	if c.mode == ModeFocused {
		c.tweens.start(0.25, floatTween(&c.fov, c.fovTarget), nil)
		return
	}
	c.mode = ModeZoomAnimating
	c.tweens.start(0.25, floatTween(&c.fov, c.fovTarget), func() {
		if c.mode == ModeZoomAnimating {
			c.mode = ModeIdle
		}
	})
}

// ===== Focus =====

// FocusOnNode starts a fly-to transition toward the node. Flight duration is
// a linear remap of the clamped camera-to-target distance. The previously
// selected node is deselected before the new one is marked. Returns the
// flight duration.
func (c *Controller) FocusOnNode(id string) (float64, error) {
	if !c.active {
		return 0, errors.New(errors.ErrCodeUnsupported, "camera controller is inactive")
	}
	if c.snapshot == nil {
		return 0, errors.New(errors.ErrCodeNotFound, "no snapshot loaded")
	}
	node := c.snapshot.Node(id)
	if node == nil {
		return 0, errors.New(errors.ErrCodeNodeNotFound, "node not found: %s", id)
	}
	if node.Position == nil {
		return 0, errors.New(errors.ErrCodeUnsupported, "node has no position yet: %s", id)
	}

	c.clearSelection()
	node.Selected = true
	c.focusTarget = id
	c.freshTimer = c.opts.FreshSelectionWindow
	c.held = false
	c.velocity = graph.Vector3{}

	dest := node.Position.Add(c.opts.FocusOffset)
	duration := flightDuration(graph.Dist(c.position, dest))

	c.tweens.cancelAll()
	c.mode = ModeFocusAnimating
	c.tweens.start(duration, vecTween(&c.position, dest), func() {
		if !c.active || c.mode != ModeFocusAnimating || c.focusTarget != id {
			return
		}
		c.mode = ModeFocused
		if c.onInfoReady != nil {
			c.onInfoReady(id)
		}
	})
	c.fovTarget = c.clampFOV(c.opts.FocusZoom)
	c.tweens.start(duration, floatTween(&c.fov, c.fovTarget), nil)

	c.logger.Debug("fly-to started", "node", id, "duration", duration)
	return duration, nil
}

// HideInfo leaves the focused view: focus target and selection are cleared,
// in-flight motion is cancelled, and the field of view animates back to the
// default zoom.
func (c *Controller) HideInfo() {
	if !c.active || (c.mode != ModeFocused && c.mode != ModeFocusAnimating) {
		return
	}
	c.clearSelection()
	c.focusTarget = ""
	c.tweens.cancelAll()
	c.fovTarget = c.clampFOV(c.opts.DefaultZoom)
	c.tweens.start(0.25, floatTween(&c.fov, c.fovTarget), nil)
	c.mode = ModeIdle
}

// ===== Tick =====

// Step advances the controller by dt seconds: runs tweens, applies drag
// smoothing and momentum, and expires the fresh-selection window. A frozen
// controller ignores time entirely.
func (c *Controller) Step(dt float64) {
	if !c.active || dt <= 0 {
		return
	}

	if c.freshTimer > 0 {
		// Expires on its own schedule, even mid-flight.
		c.freshTimer -= dt
	}

	c.tweens.step(dt)

	switch {
	case c.held:
		c.velocity = graph.Lerp(c.velocity, c.frameDelta, c.opts.DragSmoothing)
		c.position = c.position.Add(c.velocity)
		c.frameDelta = graph.Vector3{}
	case c.velocity.Length() > 0:
		c.position = c.position.Add(c.velocity)
		c.velocity = c.velocity.Scale(math.Pow(c.opts.MomentumDecay, dt))
		if c.velocity.Length() < velocityEpsilon {
			c.velocity = graph.Vector3{}
			if c.mode == ModeDragging {
				c.mode = ModeIdle
			}
		}
	}
}

// ===== helpers =====

func (c *Controller) clampFOV(v float64) float64 {
	return math.Min(math.Max(v, c.opts.MinZoom), c.opts.MaxZoom)
}

func (c *Controller) clearSelection() {
	if c.snapshot == nil || c.focusTarget == "" {
		return
	}
	if prev := c.snapshot.Node(c.focusTarget); prev != nil {
		prev.Selected = false
	}
}

// flightDuration maps camera-to-target distance onto flight time: distance
// clamped to [100, 1000] world units, remapped linearly onto [0.35, 1.5]
// seconds.
func flightDuration(dist float64) float64 {
	d := math.Min(math.Max(dist, minFlightDist), maxFlightDist)
	t := (d - minFlightDist) / (maxFlightDist - minFlightDist)
	return minFlightDur + t*(maxFlightDur-minFlightDur)
}
