// SPDX-License-Identifier: EPL-2.0

package utils

// Cubic evaluates the Catmull-Rom spline through y0..y3 at x, the fraction
// of the way from y1 to y2. It passes through y1 at 0 and y2 at 1 and is
// exact for straight lines.
func Cubic(y0, y1, y2, y3, x float64) float64 {
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)
	return ((c3*x+c2)*x+c1)*x + y1
}
