package engine

import (
	"math"

	"github.com/letmevibethatforyou/locatex"
)

const (
	closenessWeight = 50.0
	alignmentSlack  = 10.0
	alignmentBonus  = 5.0
)

var directionWeights = map[locatex.Direction]float64{
	locatex.DirRight: 20,
	locatex.DirBelow: 20,
	locatex.DirLeft:  10,
	locatex.DirAbove: 10,
}

// Separation returns the edge-to-edge distance between two rectangles; 0 when they overlap.
func Separation(a, b locatex.Rect) float64 {
	dx := math.Max(0, math.Max(a.Left()-b.Right(), b.Left()-a.Right()))
	dy := math.Max(0, math.Max(a.Top()-b.Bottom(), b.Top()-a.Bottom()))
	return math.Hypot(dx, dy)
}

// ProximityScore rates on a 0-100 scale how close target sits to reference and
// how well its position agrees with the preferred directions.
func ProximityScore(target, reference locatex.Rect, threshold float64, dirs []locatex.Direction) float64 {
	if target.ZeroArea() {
		return 0
	}
	distance := Separation(target, reference)
	if distance > threshold {
		return 0
	}

	score := closenessWeight
	if threshold > 0 {
		score = (1 - distance/threshold) * closenessWeight
	}

	for _, d := range dirs {
		if satisfiesDirection(target, reference, d) {
			score += directionWeights[d]
		}
	}

	if math.Abs(target.Top()-reference.Top()) <= alignmentSlack ||
		math.Abs(target.Bottom()-reference.Bottom()) <= alignmentSlack {
		score += alignmentBonus
	}
	if math.Abs(target.Left()-reference.Left()) <= alignmentSlack ||
		math.Abs(target.Right()-reference.Right()) <= alignmentSlack {
		score += alignmentBonus
	}

	return clamp(score, 0, 100)
}

func satisfiesDirection(target, reference locatex.Rect, d locatex.Direction) bool {
	switch d {
	case locatex.DirRight:
		return target.Left() >= reference.Right()
	case locatex.DirBelow:
		return target.Top() >= reference.Bottom()
	case locatex.DirLeft:
		return target.Right() <= reference.Left()
	case locatex.DirAbove:
		return target.Bottom() <= reference.Top()
	default:
		return false
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
