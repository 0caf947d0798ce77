// Package molecule provides the molecular graph model, SMILES parsing,
// pharmacophore atom typing, and CATS fingerprint computation for the
// ChemSplit-QC toolkit.  Fingerprints encode a molecule as a fixed-length
// histogram of pharmacophore-type pairs binned by topological distance,
// enabling set-similarity comparisons between ligand collections.
package molecule

// BondOrder is the integer order of a covalent bond.
type BondOrder int

const (
	BondSingle BondOrder = 1
	BondDouble BondOrder = 2
	BondTriple BondOrder = 3
)

// Atom is a node of the molecular graph.  Fields are populated by the SMILES
// parser and read-only afterwards.
type Atom struct {
	// Element is the atomic symbol with canonical capitalisation ("C", "Cl").
	Element string

	// Aromatic marks atoms written in lowercase SMILES aromatic form.
	Aromatic bool

	// Charge is the formal charge.
	Charge int

	// HCount is the number of attached hydrogens, explicit (bracket atoms)
	// or implied by the organic-subset valence model.
	HCount int
}

// Bond is an edge of the molecular graph between atom indices A and B.
type Bond struct {
	A, B     int
	Order    BondOrder
	Aromatic bool
}

// Molecule is an immutable heavy-atom graph.  Hydrogens are implicit; only
// heavy atoms occupy indices.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	// adjacency[i] lists the bond indices incident to atom i.
	adjacency [][]int
}

// NumAtoms returns the number of heavy atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// buildAdjacency populates the per-atom incident-bond lists.  Called once by
// the parser after all bonds are known.
func (m *Molecule) buildAdjacency() {
	m.adjacency = make([][]int, len(m.Atoms))
	for bi, b := range m.Bonds {
		m.adjacency[b.A] = append(m.adjacency[b.A], bi)
		m.adjacency[b.B] = append(m.adjacency[b.B], bi)
	}
}

// Neighbors returns the atom indices bonded to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adjacency[i]))
	for _, bi := range m.adjacency[i] {
		b := m.Bonds[bi]
		if b.A == i {
			out = append(out, b.B)
		} else {
			out = append(out, b.A)
		}
	}
	return out
}

// IncidentBonds returns the bonds incident to atom i.
func (m *Molecule) IncidentBonds(i int) []Bond {
	out := make([]Bond, 0, len(m.adjacency[i]))
	for _, bi := range m.adjacency[i] {
		out = append(out, m.Bonds[bi])
	}
	return out
}

// BondBetween returns the bond joining atoms i and j, if any.
func (m *Molecule) BondBetween(i, j int) (Bond, bool) {
	for _, bi := range m.adjacency[i] {
		b := m.Bonds[bi]
		if (b.A == i && b.B == j) || (b.A == j && b.B == i) {
			return b, true
		}
	}
	return Bond{}, false
}

// Degree returns the heavy-atom degree of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adjacency[i]) }

// bondOrderSum returns the sum of bond orders at atom i, counting aromatic
// bonds as single bonds.  Used by the valence model and the atom typer.
func (m *Molecule) bondOrderSum(i int) int {
	sum := 0
	for _, bi := range m.adjacency[i] {
		b := m.Bonds[bi]
		if b.Aromatic {
			sum++
			continue
		}
		sum += int(b.Order)
	}
	return sum
}

// hasBondOfOrder reports whether atom i participates in a non-aromatic bond
// of the given order.
func (m *Molecule) hasBondOfOrder(i int, order BondOrder) bool {
	for _, bi := range m.adjacency[i] {
		b := m.Bonds[bi]
		if !b.Aromatic && b.Order == order {
			return true
		}
	}
	return false
}
