package solar

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	coarseStep = 5
	fineStep   = 1
	fineSpan   = 5
	tiltMin    = -90
	tiltMax    = 90
)

// Search finds the fixed tilt pair with the highest annual energy. It
// evaluates every orientation on a 5° grid covering [-90, 90]², then
// refines on a 1° grid spanning ±5° around the coarse winner, clamped
// to the valid range (the window narrows at the boundary, it never
// wraps). A candidate displaces the running best only with a strictly
// larger total, so on exact ties the first candidate in row-major order
// (east-west tilt ascending, then north-south tilt ascending) wins.
//
// An empty vector series is not an error: every orientation yields zero
// energy and the result is (0, 0) with zero total. Callers distinguish
// that degenerate outcome by inspecting EnergyWh.
//
// Grid cells are independent and are evaluated on a bounded worker
// group; the reduction runs single-threaded in candidate order, keeping
// the tie-break deterministic. Cancelling ctx aborts between cells.
func Search(ctx context.Context, vectors []SunVector, efficiency float64) (OptimizationResult, error) {
	if err := validateEfficiency(efficiency); err != nil {
		return OptimizationResult{}, err
	}
	if len(vectors) == 0 {
		return OptimizationResult{}, nil
	}

	best := OptimizationResult{}

	coarse := gridCandidates(tiltMin, tiltMax, tiltMin, tiltMax, coarseStep)
	totals, err := evaluate(ctx, vectors, efficiency, coarse)
	if err != nil {
		return OptimizationResult{}, err
	}
	best = reduceBest(best, coarse, totals)

	fine := gridCandidates(
		clampTilt(best.EWTilt-fineSpan), clampTilt(best.EWTilt+fineSpan),
		clampTilt(best.NSTilt-fineSpan), clampTilt(best.NSTilt+fineSpan),
		fineStep,
	)
	totals, err = evaluate(ctx, vectors, efficiency, fine)
	if err != nil {
		return OptimizationResult{}, err
	}
	best = reduceBest(best, fine, totals)

	return best, nil
}

type candidate struct {
	ew, ns int
}

// gridCandidates enumerates tilt pairs row-major: east-west ascending,
// then north-south ascending.
func gridCandidates(ewMin, ewMax, nsMin, nsMax, step int) []candidate {
	var cands []candidate
	for ew := ewMin; ew <= ewMax; ew += step {
		for ns := nsMin; ns <= nsMax; ns += step {
			cands = append(cands, candidate{ew: ew, ns: ns})
		}
	}
	return cands
}

// evaluate computes the annual total for every candidate orientation.
// Each cell re-integrates the full year, which makes this the dominant
// cost of the whole pipeline; cells run concurrently but each result
// lands in its own slot so the caller can reduce in candidate order.
func evaluate(ctx context.Context, vectors []SunVector, efficiency float64, cands []candidate) ([]float64, error) {
	totals := make([]float64, len(cands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			totals[i] = fixedTotal(vectors, efficiency, Normal(float64(c.ew), float64(c.ns)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

// reduceBest folds candidate totals into the running best using strict
// greater-than, initialized by the caller. Later equal totals never
// displace an earlier winner.
func reduceBest(best OptimizationResult, cands []candidate, totals []float64) OptimizationResult {
	for i, c := range cands {
		if totals[i] > best.EnergyWh {
			best = OptimizationResult{EWTilt: c.ew, NSTilt: c.ns, EnergyWh: totals[i]}
		}
	}
	return best
}

// fixedTotal is Integrate followed by Total for one fixed normal,
// without materializing the per-interval series. Summation order matches
// Integrate+Total exactly, so grid totals are bit-identical to what a
// caller would compute from the public API.
func fixedTotal(vectors []SunVector, efficiency float64, normal Vec3) float64 {
	total := 0.0
	for _, v := range vectors {
		total += v.DNI * clipCosine(v.Dir.Dot(normal)) * efficiency * PanelArea * intervalHours
	}
	return total
}

func clampTilt(deg int) int {
	if deg < tiltMin {
		return tiltMin
	}
	if deg > tiltMax {
		return tiltMax
	}
	return deg
}
