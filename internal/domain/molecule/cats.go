package molecule

import (
	"math"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

const (
	// NumBuckets is the per-pair histogram length; bucket b holds pairs at
	// topological distance b+1.
	NumBuckets = 10

	// MaxDistance is the exclusive distance cutoff: pairs at bond distance 11
	// or beyond (including disconnected pairs) contribute nothing.
	MaxDistance = 11

	// FingerprintDim is the flattened descriptor length: 28 pair keys times
	// 10 distance buckets.
	FingerprintDim = NumPairKeys * NumBuckets
)

// Fingerprint is a flattened CATS descriptor: the 28 per-pair distance
// histograms concatenated in PairKeys order, buckets in ascending distance
// order within each block.  Values are non-negative integers for the exact
// variant and non-negative reals for the smoothed variant.
type Fingerprint [FingerprintDim]float64

// CATSOptions selects the histogram variant.
type CATSOptions struct {
	// Smooth spreads each pair over all ten buckets with a Gaussian kernel
	// centred on its distance instead of a hard unit increment.  The two
	// variants are never mixed within one fingerprint.
	Smooth bool
}

// CATS computes the CATS pharmacophore fingerprint of m: it types every atom,
// computes all-pairs topological distances, and accumulates one count per
// (label-on-i, label-on-j) combination for every unordered atom pair within
// the distance cutoff.  Atoms carrying multiple labels contribute multiple
// counts per pair, which is what makes this a pharmacophore-pair histogram
// rather than an atom-pair one.
func CATS(m *Molecule, opts CATSOptions) (*Fingerprint, error) {
	if m == nil || m.NumAtoms() == 0 {
		return nil, errors.New(errors.CodeEmptyMolecule, "cannot fingerprint a molecule with no atoms")
	}
	return CATSWithTypes(m, AssignTypes(m), opts)
}

// CATSWithTypes computes the fingerprint with caller-supplied atom labels,
// bypassing the typer.  types must be indexed by atom position.
func CATSWithTypes(m *Molecule, types []TypeSet, opts CATSOptions) (*Fingerprint, error) {
	if m == nil || m.NumAtoms() == 0 {
		return nil, errors.New(errors.CodeEmptyMolecule, "cannot fingerprint a molecule with no atoms")
	}
	if len(types) != m.NumAtoms() {
		return nil, errors.New(errors.CodeAtomOutOfRange, "type assignment length does not match atom count")
	}
	dist := m.DistanceMatrix()

	var fp Fingerprint
	n := m.NumAtoms()
	for i := 0; i < n; i++ {
		if types[i].IsEmpty() {
			continue
		}
		for j := i + 1; j < n; j++ {
			if types[j].IsEmpty() {
				continue
			}
			d := dist[i][j]
			if d < 1 || d >= MaxDistance {
				continue
			}
			for _, x := range types[i].Types() {
				for _, y := range types[j].Types() {
					accumulate(&fp, PairIndex(x, y), d, opts.Smooth)
				}
			}
		}
	}
	return &fp, nil
}

// accumulate adds one pair observation at distance d to the key's histogram
// block, either as a hard increment in bucket d-1 or as a Gaussian kernel
// over all buckets.
func accumulate(fp *Fingerprint, key, d int, smooth bool) {
	base := key * NumBuckets
	if !smooth {
		fp[base+d-1]++
		return
	}
	center := float64(d - 1)
	for b := 0; b < NumBuckets; b++ {
		delta := float64(b) - center
		fp[base+b] += math.Exp(-delta * delta)
	}
}

// Sum returns the total mass of the fingerprint.  For the exact variant this
// equals the number of typed pair observations within the distance cutoff.
func (fp *Fingerprint) Sum() float64 {
	total := 0.0
	for _, v := range fp {
		total += v
	}
	return total
}

// Histogram returns the 10-bucket block for the canonical pair of labels x
// and y, as a copy.
func (fp *Fingerprint) Histogram(x, y PharmacophoreType) [NumBuckets]float64 {
	var out [NumBuckets]float64
	base := PairIndex(x, y) * NumBuckets
	copy(out[:], fp[base:base+NumBuckets])
	return out
}
