package forces

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mdsim/internal/md"
)

// parallelThreshold is the atom count below which ComputeParallel runs the
// reference loop instead of spawning workers.
const parallelThreshold = 64

var parallelWorkers = runtime.NumCPU()

// ComputeParallel splits the N×N row sums across worker goroutines. Each
// worker owns a contiguous block of rows and writes nothing else, so no
// synchronization is needed beyond the final Wait. pairMagnitude is
// symmetric in i and j, which keeps the net force at zero up to rounding.
func ComputeParallel(pos md.Coords, p LJParams) (md.Coords, error) {
	n := len(pos)
	if n < parallelThreshold {
		return ComputeReference(pos, p), nil
	}
	return computeRows(pos, p, parallelWorkers)
}

func computeRows(pos md.Coords, p LJParams, workers int) (md.Coords, error) {
	n := len(pos)
	out := md.Zeros(n)
	s6 := p.sigma6()

	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		start := start
		g.Go(func() error {
			for i := start; i < end; i++ {
				pi := pos[i]
				var acc md.Vec3
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					dc := pi.Sub(pos[j])
					f := pairMagnitude(dc.Norm2(), s6, p.Epsilon)
					acc[0] += f * dc[0]
					acc[1] += f * dc[1]
					acc[2] += f * dc[2]
				}
				out[i] = acc
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
