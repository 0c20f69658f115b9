// Package physics provides the Lorenz system.
//
// [Lorenz] exposes the three right-hand sides of the system separately
// ([Lorenz.DX], [Lorenz.DY], [Lorenz.DZ]) because the integrator advances
// one axis at a time:
//
//	dx/dt = -σ(x - y)
//	dy/dt = x(ρ - z) - y
//	dz/dt = xy - βz
//
// For σ=10, β=2.67, ρ=28 the system is chaotic but bounded.
package physics
