package stats

// Tail selects the alternative hypothesis for the cluster test
type Tail int

const (
	// TailBoth tests both positive and negative clusters
	TailBoth Tail = 0
	// TailPos tests positive clusters only
	TailPos Tail = 1
	// TailNeg tests negative clusters only
	TailNeg Tail = -1
)

// ClusterParams configures a one-sample cluster permutation test over a
// trials x freqs x times array.
type ClusterParams struct {
	Permutations int
	Alpha        float64 // cluster-level significance threshold
	ThresholdP   float64 // point-level p forming clusters; 0 means 0.05
	Tail         Tail
	Seed         int64
	Workers      int // 0 = runtime.GOMAXPROCS(0)
}

// Cluster is one contiguous suprathreshold region of the t-map
type Cluster struct {
	ID       int     `json:"id"`
	Mass     float64 `json:"mass"` // summed t values; sign gives direction
	Size     int     `json:"size"` // member point count
	PValue   float64 `json:"p_value"`
	FreqLoHz float64 `json:"freq_lo_hz"`
	FreqHiHz float64 `json:"freq_hi_hz"`
	TimeLoS  float64 `json:"time_lo_s"`
	TimeHiS  float64 `json:"time_hi_s"`
}

// Significant reports whether the cluster survives the given alpha
func (c Cluster) Significant(alpha float64) bool {
	return c.PValue < alpha
}

// ClusterResult is the full output of the permutation test
type ClusterResult struct {
	TMap      [][]float64 `json:"-"` // observed t statistic per freq x time point
	Threshold float64     `json:"threshold"`
	DF        int         `json:"df"`
	Clusters  []Cluster   `json:"clusters"`
	SigMask   [][]bool    `json:"-"` // union of significant clusters
	NullMax   []float64   `json:"-"` // max cluster mass per permutation
}

// NumSignificant counts clusters below alpha
func (r *ClusterResult) NumSignificant(alpha float64) int {
	n := 0
	for _, c := range r.Clusters {
		if c.Significant(alpha) {
			n++
		}
	}
	return n
}

// AnySignificant reports whether the significance mask is non-empty
func (r *ClusterResult) AnySignificant() bool {
	for _, row := range r.SigMask {
		for _, v := range row {
			if v {
				return true
			}
		}
	}
	return false
}
