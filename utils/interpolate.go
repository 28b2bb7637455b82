// SPDX-License-Identifier: EPL-2.0

package utils

// Lerp blends linearly from y1 to y2; t is the fraction in [0, 1).
func Lerp(y1, y2, t float32) float32 {
	return y1 + (y2-y1)*t
}

// Cubic evaluates the Catmull-Rom spline through y1 and y2 at t in [0, 1),
// using y0 and y3 as the outer control points.
func Cubic(y0, y1, y2, y3, t float32) float32 {
	a := (3*(y1-y2) + y3 - y0) / 2
	b := 2*y2 + y0 - (5*y1+y3)/2
	c := (y2 - y0) / 2
	return ((a*t+b)*t+c)*t + y1
}
