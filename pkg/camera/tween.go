package camera

// ===== Tween Tasks =====

import "github.com/lselvakumaran/fixinventory/pkg/graph"

// Tween is one cancellable interpolation task. It is advanced by the runner's
// Step; at completion the final value is applied exactly once and the
// completion callback fires.
type Tween struct {
	elapsed  float64
	duration float64
	update   func(t float64)
	complete func()
	done     bool
}

// Done reports whether the tween has reached its target.
func (t *Tween) Done() bool { return t.done }

// runner owns the set of in-flight tweens. Cancellation is "cancel all, start
// new": cancelled tweens are dropped synchronously without applying any part
// of their remaining motion and without firing their completion callbacks.
type runner struct {
	tweens []*Tween
	gen    int
}

// start registers a new interpolation task. update receives the normalized
// progress in [0, 1]; complete may be nil.
func (r *runner) start(duration float64, update func(t float64), complete func()) *Tween {
	tw := &Tween{duration: duration, update: update, complete: complete}
	if duration <= 0 {
		tw.done = true
		update(1)
		if complete != nil {
			complete()
		}
		return tw
	}
	r.tweens = append(r.tweens, tw)
	return tw
}

// cancelAll drops every in-flight tween. The generation counter lets step
// detect a cancellation issued from inside a completion callback.
func (r *runner) cancelAll() {
	r.tweens = nil
	r.gen++
}

// active reports whether any tween is still running.
func (r *runner) active() bool { return len(r.tweens) > 0 }

// step advances all tweens by dt seconds. Completed tweens apply t=1, fire
// their callback, and are removed. A callback may itself cancel or start
// tweens; the set is snapshotted first so mutation during iteration is safe.
func (r *runner) step(dt float64) {
	running := r.tweens
	gen := r.gen
	r.tweens = nil
	for _, tw := range running {
		if tw.done {
			continue
		}
		tw.elapsed += dt
		if tw.elapsed < tw.duration {
			tw.update(tw.elapsed / tw.duration)
			r.tweens = append(r.tweens, tw)
			continue
		}
		tw.done = true
		tw.update(1)
		if tw.complete != nil {
			tw.complete()
			if r.gen != gen {
				// Callback cancelled the batch; the rest of it is gone too.
				return
			}
		}
	}
}

// smoothstep eases interpolation so camera motion accelerates and decelerates
// instead of snapping.
func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

// floatLerp interpolates between two scalars.
func floatLerp(from, to, t float64) float64 { return from + (to-from)*t }

// vecTween builds an update function tweening *dst from its current value.
func vecTween(dst *graph.Vector3, to graph.Vector3) func(t float64) {
	from := *dst
	return func(t float64) { *dst = graph.Lerp(from, to, smoothstep(t)) }
}

// floatTween builds an update function tweening *dst from its current value.
func floatTween(dst *float64, to float64) func(t float64) {
	from := *dst
	return func(t float64) { *dst = floatLerp(from, to, smoothstep(t)) }
}
