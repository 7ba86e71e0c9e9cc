package geometry

import "math"

const (
	// approximate pen travel per flattened segment, in user units
	flattenStep = 2.0
	minSegments = 16
	maxSegments = 1024
)

// segmentsFor picks a segment count for a curve of roughly the given length
func segmentsFor(length float64) int {
	n := int(math.Ceil(length / flattenStep))
	if n < minSegments {
		return minSegments
	}
	if n > maxSegments {
		return maxSegments
	}
	return n
}

func (b *builder) cubicTo(c1, c2, p Point) {
	p0 := b.cur
	n := segmentsFor(p0.dist(c1) + c1.dist(c2) + c2.dist(p))
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		a := mt * mt * mt
		bb := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		b.lineTo(Point{
			a*p0.X + bb*c1.X + c*c2.X + d*p.X,
			a*p0.Y + bb*c1.Y + c*c2.Y + d*p.Y,
		})
	}
	b.lineTo(p)
}

func (b *builder) quadTo(c, p Point) {
	p0 := b.cur
	n := segmentsFor(p0.dist(c) + c.dist(p))
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		b.lineTo(Point{
			mt*mt*p0.X + 2*mt*t*c.X + t*t*p.X,
			mt*mt*p0.Y + 2*mt*t*c.Y + t*t*p.Y,
		})
	}
	b.lineTo(p)
}

// arcTo flattens an SVG elliptical arc using the endpoint to center
// conversion of SVG 1.1 appendix F.6.5, including out-of-range radii
// correction (F.6.6).
func (b *builder) arcTo(rx, ry, rotDeg float64, large, sweep bool, p Point) {
	p0 := b.cur
	if p0 == p {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		b.lineTo(p)
		return
	}

	phi := rotDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)

	dx2 := (p0.X - p.X) / 2
	dy2 := (p0.Y - p.Y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1p*y1p - ry2*x1p*x1p
	den := rx2*y1p*y1p + ry2*x1p*x1p
	coef := 0.0
	if den > 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	cx := cosPhi*cxp - sinPhi*cyp + (p0.X+p.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (p0.Y+p.Y)/2

	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta1 := math.Atan2(uy, ux)
	dtheta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	n := segmentsFor(math.Abs(dtheta) * math.Max(rx, ry))
	for i := 1; i < n; i++ {
		theta := theta1 + dtheta*float64(i)/float64(n)
		sinT, cosT := math.Sincos(theta)
		b.lineTo(Point{
			cosPhi*rx*cosT - sinPhi*ry*sinT + cx,
			sinPhi*rx*cosT + cosPhi*ry*sinT + cy,
		})
	}
	b.lineTo(p)
}
