// Package progress turns sparse, bursty upload checkpoints into a smooth,
// monotonic display signal.
//
// The Interpolator keeps two values apart: truth, which only moves when the
// uploader CLI confirms bytes on the wire, and display, which a fixed tick
// advances toward the next chunk boundary using the historical checkpoint
// interval. Display never exceeds the boundary and never moves backward, so
// the rendered number needs no correction when the real checkpoint lands.
// The sink is a plain function; nothing here knows about any UI layer.
package progress
