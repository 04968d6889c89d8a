package environment

import "planbench/geometry"

// Checker wraps an environment for one planner solve and counts the queries it
// answers. A Checker is not safe for concurrent use; create one per solve.
type Checker struct {
	env         Environment
	pointChecks int
	edgeChecks  int
}

// NewChecker creates a validity checker over env
func NewChecker(env Environment) *Checker {
	return &Checker{env: env}
}

// Environment returns the wrapped environment
func (c *Checker) Environment() Environment {
	return c.env
}

// IsValid reports whether s is inside the bounds and collision-free
func (c *Checker) IsValid(s geometry.State) bool {
	c.pointChecks++
	return c.env.IsValid(s)
}

// IsValidEdge reports whether the straight segment a-b is collision-free
func (c *Checker) IsValidEdge(a, b geometry.State) bool {
	c.edgeChecks++
	return c.env.IsValidEdge(a, b)
}

// IsValidPath checks every state and every consecutive edge of states
func (c *Checker) IsValidPath(states []geometry.State) bool {
	for i, s := range states {
		if !c.IsValid(s) {
			return false
		}
		if i > 0 && !c.IsValidEdge(states[i-1], s) {
			return false
		}
	}
	return true
}

func (c *Checker) PointChecks() int { return c.pointChecks }
func (c *Checker) EdgeChecks() int  { return c.edgeChecks }
