package forces

import "testing"

func benchmarkStrategy(b *testing.B, s Strategy, edge int) {
	ff, err := NewLJ(LJParams{Sigma: 0.9, Epsilon: 20}, s)
	if err != nil {
		b.Fatal(err)
	}
	pos := jitteredLattice(edge, 1.0, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ff.Compute(pos); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReference_Cube3(b *testing.B)  { benchmarkStrategy(b, StrategyReference, 3) }
func BenchmarkVectorized_Cube3(b *testing.B) { benchmarkStrategy(b, StrategyVectorized, 3) }
func BenchmarkParallel_Cube3(b *testing.B)   { benchmarkStrategy(b, StrategyParallel, 3) }

func BenchmarkReference_Cube6(b *testing.B)  { benchmarkStrategy(b, StrategyReference, 6) }
func BenchmarkVectorized_Cube6(b *testing.B) { benchmarkStrategy(b, StrategyVectorized, 6) }
func BenchmarkParallel_Cube6(b *testing.B)   { benchmarkStrategy(b, StrategyParallel, 6) }

func BenchmarkPotentialEnergy_Cube6(b *testing.B) {
	pos := jitteredLattice(6, 1.0, 1)
	p := DefaultLJParams()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PotentialEnergy(pos, p)
	}
}
