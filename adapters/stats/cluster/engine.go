package cluster

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"eegtfr/domain/stats"
	"eegtfr/domain/tfr"
	"eegtfr/internal/errors"
	"eegtfr/ports"
)

// Engine runs one-sample cluster permutation tests over per-trial
// time-frequency cubes. The null hypothesis is a zero mean at every
// freq x time point; the null distribution is built by randomly
// flipping trial signs and recording the maximum cluster mass.
type Engine struct {
	rngPort ports.RNGPort
	runID   string
}

// NewEngine creates a cluster permutation engine
func NewEngine(rngPort ports.RNGPort) *Engine {
	return &Engine{rngPort: rngPort, runID: "cluster"}
}

// SetRunID scopes the RNG streams to a pipeline run
func (e *Engine) SetRunID(runID string) {
	if runID != "" {
		e.runID = runID
	}
}

// Test runs the permutation test on the cube's per-trial data
func (e *Engine) Test(ctx context.Context, cube *tfr.Cube, params stats.ClusterParams) (*stats.ClusterResult, error) {
	n := cube.NumTrials()
	if n < 2 {
		return nil, errors.StatsError("cluster test needs at least two trials")
	}
	if err := cube.Validate(); err != nil {
		return nil, errors.Wrap(err, "cube shape validation failed")
	}
	if params.Permutations < 1 {
		return nil, errors.StatsError("at least one permutation is required")
	}

	thresholdP := params.ThresholdP
	if thresholdP <= 0 {
		thresholdP = 0.05
	}
	df := n - 1
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	var threshold float64
	if params.Tail == stats.TailBoth {
		threshold = dist.Quantile(1 - thresholdP/2)
	} else {
		threshold = dist.Quantile(1 - thresholdP)
	}

	nFreqs, nTimes := cube.NumFreqs(), cube.NumTimes()

	// Observed statistic map, all trials with positive sign
	obsSigns := make([]float64, n)
	for i := range obsSigns {
		obsSigns[i] = 1
	}
	tMap := newGrid(nFreqs, nTimes)
	computeTMap(cube.Power, obsSigns, tMap)

	observed := findClusters(tMap, threshold, params.Tail, cube.Freqs, cube.Times)

	nullMax, err := e.nullDistribution(ctx, cube, params, threshold)
	if err != nil {
		return nil, err
	}

	// Monte Carlo p-value with the observed permutation included
	for i := range observed {
		stat := tailStat(observed[i].Mass, params.Tail)
		exceed := 0
		for _, m := range nullMax {
			if m >= stat {
				exceed++
			}
		}
		observed[i].PValue = float64(1+exceed) / float64(1+len(nullMax))
	}

	sort.Slice(observed, func(i, j int) bool {
		if observed[i].PValue != observed[j].PValue {
			return observed[i].PValue < observed[j].PValue
		}
		return math.Abs(observed[i].Mass) > math.Abs(observed[j].Mass)
	})
	for i := range observed {
		observed[i].ID = i + 1
	}

	result := &stats.ClusterResult{
		TMap:      tMap,
		Threshold: threshold,
		DF:        df,
		Clusters:  observed,
		NullMax:   nullMax,
	}
	result.SigMask = significanceMask(tMap, threshold, params, observed, cube)
	return result, nil
}

// nullDistribution computes the max cluster mass for every sign-flip
// permutation. Each permutation draws its signs from an index-derived
// RNG stream, so the result is identical for any worker count.
func (e *Engine) nullDistribution(ctx context.Context, cube *tfr.Cube, params stats.ClusterParams, threshold float64) ([]float64, error) {
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > params.Permutations {
		workers = params.Permutations
	}

	n := cube.NumTrials()
	nFreqs, nTimes := cube.NumFreqs(), cube.NumTimes()
	nullMax := make([]float64, params.Permutations)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		worker := w
		g.Go(func() error {
			signs := make([]float64, n)
			grid := newGrid(nFreqs, nTimes)
			for perm := worker; perm < params.Permutations; perm += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				stream, err := e.rngPort.Stream(gctx, e.runID, "permutation", perm, params.Seed)
				if err != nil {
					return err
				}
				drawSigns(stream, signs)
				computeTMap(cube.Power, signs, grid)
				nullMax[perm] = maxClusterMass(grid, threshold, params.Tail)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nullMax, nil
}

func drawSigns(r *rand.Rand, signs []float64) {
	for i := range signs {
		if r.Intn(2) == 0 {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}
}

// computeTMap fills dst with the one-sample t statistic of the
// sign-weighted trials at every freq x time point.
func computeTMap(power [][][]float64, signs []float64, dst [][]float64) {
	n := float64(len(power))
	sqrtN := math.Sqrt(n)
	for fi := range dst {
		row := dst[fi]
		for ti := range row {
			var sum, sumSq float64
			for tr := range power {
				v := signs[tr] * power[tr][fi][ti]
				sum += v
				sumSq += v * v
			}
			mean := sum / n
			variance := (sumSq - n*mean*mean) / (n - 1)
			if variance <= 0 {
				row[ti] = 0
				continue
			}
			row[ti] = mean / (math.Sqrt(variance) / sqrtN)
		}
	}
}

// findClusters labels suprathreshold regions and collects their mass
// and freq/time extents. Positive and negative clusters are labeled
// separately so a sign change always splits a cluster.
func findClusters(tMap [][]float64, threshold float64, tail stats.Tail, freqs, times []float64) []stats.Cluster {
	var clusters []stats.Cluster
	if tail != stats.TailNeg {
		clusters = append(clusters, collect(tMap, threshold, false, freqs, times)...)
	}
	if tail != stats.TailPos {
		clusters = append(clusters, collect(tMap, threshold, true, freqs, times)...)
	}
	return clusters
}

func collect(tMap [][]float64, threshold float64, negative bool, freqs, times []float64) []stats.Cluster {
	mask := make([][]bool, len(tMap))
	for fi, row := range tMap {
		mask[fi] = make([]bool, len(row))
		for ti, v := range row {
			if negative {
				mask[fi][ti] = v < -threshold
			} else {
				mask[fi][ti] = v > threshold
			}
		}
	}
	labels, count := LabelComponents(mask)
	if count == 0 {
		return nil
	}

	clusters := make([]stats.Cluster, count)
	for i := range clusters {
		clusters[i].FreqLoHz = math.Inf(1)
		clusters[i].TimeLoS = math.Inf(1)
		clusters[i].FreqHiHz = math.Inf(-1)
		clusters[i].TimeHiS = math.Inf(-1)
	}
	for fi, row := range labels {
		for ti, label := range row {
			if label == 0 {
				continue
			}
			c := &clusters[label-1]
			c.Mass += tMap[fi][ti]
			c.Size++
			if len(freqs) > 0 {
				c.FreqLoHz = math.Min(c.FreqLoHz, freqs[fi])
				c.FreqHiHz = math.Max(c.FreqHiHz, freqs[fi])
			}
			if len(times) > 0 {
				c.TimeLoS = math.Min(c.TimeLoS, times[ti])
				c.TimeHiS = math.Max(c.TimeHiS, times[ti])
			}
		}
	}
	return clusters
}

// maxClusterMass returns the largest tail-appropriate cluster statistic
// in the grid, 0 when no point crosses the threshold.
func maxClusterMass(tMap [][]float64, threshold float64, tail stats.Tail) float64 {
	best := 0.0
	if tail != stats.TailNeg {
		for _, c := range collect(tMap, threshold, false, nil, nil) {
			if s := tailStat(c.Mass, tail); s > best {
				best = s
			}
		}
	}
	if tail != stats.TailPos {
		for _, c := range collect(tMap, threshold, true, nil, nil) {
			if s := tailStat(c.Mass, tail); s > best {
				best = s
			}
		}
	}
	return best
}

// tailStat maps a signed cluster mass onto the null comparison scale
func tailStat(mass float64, tail stats.Tail) float64 {
	switch tail {
	case stats.TailPos:
		return mass
	case stats.TailNeg:
		return -mass
	default:
		return math.Abs(mass)
	}
}

// significanceMask marks every point belonging to a cluster below alpha
func significanceMask(tMap [][]float64, threshold float64, params stats.ClusterParams, clusters []stats.Cluster, cube *tfr.Cube) [][]bool {
	sig := make([][]bool, cube.NumFreqs())
	for fi := range sig {
		sig[fi] = make([]bool, cube.NumTimes())
	}

	for _, polarity := range []bool{false, true} {
		if polarity && params.Tail == stats.TailPos {
			continue
		}
		if !polarity && params.Tail == stats.TailNeg {
			continue
		}
		mask := make([][]bool, len(tMap))
		for fi, row := range tMap {
			mask[fi] = make([]bool, len(row))
			for ti, v := range row {
				if polarity {
					mask[fi][ti] = v < -threshold
				} else {
					mask[fi][ti] = v > threshold
				}
			}
		}
		labels, count := LabelComponents(mask)
		if count == 0 {
			continue
		}
		// Match labeled components to significant clusters by mass sign
		// and extent via direct recomputation of each component's mass.
		masses := make([]float64, count)
		for fi, row := range labels {
			for ti, label := range row {
				if label != 0 {
					masses[label-1] += tMap[fi][ti]
				}
			}
		}
		sigComponent := make([]bool, count)
		for i, mass := range masses {
			for _, c := range clusters {
				if c.Significant(params.Alpha) && math.Abs(c.Mass-mass) < 1e-9 {
					sigComponent[i] = true
					break
				}
			}
		}
		for fi, row := range labels {
			for ti, label := range row {
				if label != 0 && sigComponent[label-1] {
					sig[fi][ti] = true
				}
			}
		}
	}
	return sig
}

func newGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}
