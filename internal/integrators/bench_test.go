package integrators

import (
	"testing"

	"github.com/san-kum/mdsim/internal/md"
)

func BenchmarkVerlet(b *testing.B) {
	integrator, _ := NewVerlet(0.001)
	x := testCoords.Clone()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Integrate(x, testForce, testMasses)
	}
}

func BenchmarkVerlet_Cube10(b *testing.B) {
	integrator, _ := NewVerlet(0.001)
	n := 1000
	x := make(md.Coords, n)
	f := make(md.Coords, n)
	masses := make([]float64, n)
	for i := range x {
		x[i] = md.Vec3{float64(i % 10), float64(i / 10 % 10), float64(i / 100)}
		f[i] = md.Vec3{0.1, -0.1, 0.05}
		masses[i] = 2
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Integrate(x, f, masses)
	}
}
