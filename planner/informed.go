package planner

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"planbench/geometry"
)

// informedSampler draws uniformly from the ellipse of states x with
// |start-x| + |x-goal| <= cBest, the prolate hyperspheroid in two dimensions
type informedSampler struct {
	center   geometry.State
	cMin     float64
	rotation *mat.Dense
}

func newInformedSampler(start, goal geometry.State) *informedSampler {
	theta := math.Atan2(goal.Y-start.Y, goal.X-start.X)
	cos, sin := math.Cos(theta), math.Sin(theta)
	return &informedSampler{
		center:   start.Midpoint(goal),
		cMin:     start.Distance(goal),
		rotation: mat.NewDense(2, 2, []float64{cos, -sin, sin, cos}),
	}
}

// sample maps a point of the unit disc through rotation * diag(r1, r2)
func (s *informedSampler) sample(rng *rand.Rand, cBest float64) geometry.State {
	r1 := cBest / 2
	r2 := math.Sqrt(math.Max(cBest*cBest-s.cMin*s.cMin, 0)) / 2

	var transform mat.Dense
	transform.Mul(s.rotation, mat.NewDiagDense(2, []float64{r1, r2}))

	rho := math.Sqrt(rng.Float64())
	phi := 2 * math.Pi * rng.Float64()
	ball := mat.NewVecDense(2, []float64{rho * math.Cos(phi), rho * math.Sin(phi)})

	var out mat.VecDense
	out.MulVec(&transform, ball)
	return geometry.NewState(s.center.X+out.AtVec(0), s.center.Y+out.AtVec(1))
}
