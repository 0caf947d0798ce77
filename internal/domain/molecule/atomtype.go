package molecule

import "sort"

// PharmacophoreType is one of the seven chemical roles an atom can play in
// ligand binding.  Labels are additive: an atom frequently carries several.
type PharmacophoreType uint8

const (
	TypeDonor     PharmacophoreType = 1 << iota // D: hydrogen-bond donor
	TypeAcceptor                                // A: hydrogen-bond acceptor
	TypePi                                      // E: aromatic / pi electrons
	TypeHalogen                                 // H: halogen
	TypeBasic                                   // B: basic nitrogen
	TypeAcidic                                  // P: acidic group
	TypeAliphatic                               // L: aliphatic carbon
)

// typeOrder fixes the enumeration order of the seven labels.  Pair-key order
// and therefore fingerprint column layout depend on it, so it must never be
// reordered.
var typeOrder = []PharmacophoreType{
	TypeDonor, TypeAcceptor, TypePi, TypeHalogen,
	TypeBasic, TypeAcidic, TypeAliphatic,
}

var typeLetter = map[PharmacophoreType]string{
	TypeDonor:     "D",
	TypeAcceptor:  "A",
	TypePi:        "E",
	TypeHalogen:   "H",
	TypeBasic:     "B",
	TypeAcidic:    "P",
	TypeAliphatic: "L",
}

// Letter returns the single-character label of t.
func (t PharmacophoreType) Letter() string { return typeLetter[t] }

// TypeSet is a bitmask of pharmacophore labels carried by one atom.
type TypeSet uint8

// Has reports whether the set contains t.
func (s TypeSet) Has(t PharmacophoreType) bool { return s&TypeSet(t) != 0 }

// Add returns the set with t included.
func (s TypeSet) Add(t PharmacophoreType) TypeSet { return s | TypeSet(t) }

// Types returns the labels in enumeration order.
func (s TypeSet) Types() []PharmacophoreType {
	var out []PharmacophoreType
	for _, t := range typeOrder {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// IsEmpty reports whether the atom carries no label.
func (s TypeSet) IsEmpty() bool { return s == 0 }

// ─────────────────────────────────────────────────────────────────────────────
// Pair-key enumeration
// ─────────────────────────────────────────────────────────────────────────────

// NumPairKeys is the number of distinct unordered type pairs (7 choose 2 plus
// the 7 self-pairs).
const NumPairKeys = 28

// PairKeys returns the 28 canonical type-pair keys in their fixed enumeration
// order: combinations-with-replacement over the label sequence D, A, E, H, B,
// P, L, each key spelled with its two characters in sorted order.  The slice
// is freshly allocated on every call.
func PairKeys() []string {
	keys := make([]string, 0, NumPairKeys)
	for i := 0; i < len(typeOrder); i++ {
		for j := i; j < len(typeOrder); j++ {
			keys = append(keys, canonicalKey(typeOrder[i], typeOrder[j]))
		}
	}
	return keys
}

var pairIndex = func() map[string]int {
	m := make(map[string]int, NumPairKeys)
	for i, k := range PairKeys() {
		m[k] = i
	}
	return m
}()

// PairIndex returns the position of the canonical key for labels x and y in
// the PairKeys order.
func PairIndex(x, y PharmacophoreType) int {
	return pairIndex[canonicalKey(x, y)]
}

// canonicalKey spells the unordered pair {x, y} with its two letters sorted.
func canonicalKey(x, y PharmacophoreType) string {
	chars := []string{x.Letter(), y.Letter()}
	sort.Strings(chars)
	return chars[0] + chars[1]
}

// ─────────────────────────────────────────────────────────────────────────────
// Typing rules
// ─────────────────────────────────────────────────────────────────────────────

// AssignTypes classifies every atom of m and returns one TypeSet per atom,
// indexed by atom position.  Rules approximate the standard CATS pharmacophore
// definitions over the heavy-atom graph with implicit hydrogen counts.
func AssignTypes(m *Molecule) []TypeSet {
	sets := make([]TypeSet, m.NumAtoms())
	for i := range m.Atoms {
		if isDonor(m, i) {
			sets[i] = sets[i].Add(TypeDonor)
		}
		if isAcceptor(m, i) {
			sets[i] = sets[i].Add(TypeAcceptor)
		}
		if isPi(m, i) {
			sets[i] = sets[i].Add(TypePi)
		}
		if isHalogen(m, i) {
			sets[i] = sets[i].Add(TypeHalogen)
		}
		if isBasic(m, i) {
			sets[i] = sets[i].Add(TypeBasic)
		}
		if isAcidic(m, i) {
			sets[i] = sets[i].Add(TypeAcidic)
		}
		if isAliphaticCarbon(m, i) {
			sets[i] = sets[i].Add(TypeAliphatic)
		}
	}
	return sets
}

// isDonor: nitrogen carrying at least one hydrogen (neutral trivalent or
// protonated), or a neutral O/S with exactly one hydrogen, or an aromatic
// N-H.
func isDonor(m *Molecule, i int) bool {
	a := m.Atoms[i]
	switch a.Element {
	case "N":
		if a.HCount == 0 {
			return false
		}
		return a.Charge == 0 || a.Charge == 1
	case "O", "S":
		return a.HCount == 1 && a.Charge == 0
	}
	return false
}

// isAcceptor: ether/hydroxyl/carbonyl-style O or S (excluding hydroxyls
// attached next to a heteroatom double bond, e.g. carboxylic O-H), anionic
// O/S, amine nitrogen not conjugated into an amide-like group, aromatic
// pyridine-type N, and aromatic O/S not flanked by ring nitrogen.
func isAcceptor(m *Molecule, i int) bool {
	a := m.Atoms[i]
	switch a.Element {
	case "O", "S":
		if a.Charge < 0 {
			return true
		}
		if a.Aromatic {
			return a.Charge == 0 && !nearAromaticNitrogen(m, i)
		}
		if a.Charge != 0 {
			return false
		}
		switch a.HCount {
		case 0:
			return true
		case 1:
			return !adjacentToHeteroDoubleBond(m, i)
		}
		return false
	case "N":
		if a.Aromatic {
			return a.HCount == 0 && a.Charge == 0
		}
		if a.Charge != 0 || m.hasBondOfOrder(i, BondDouble) || m.hasBondOfOrder(i, BondTriple) {
			return false
		}
		return !adjacentToHeteroDoubleBond(m, i)
	}
	return false
}

// adjacentToHeteroDoubleBond reports whether any neighbor of atom i carries a
// double bond to O, N, P, or S.  This is what demotes amide nitrogens and
// carboxylic hydroxyls from acceptor status.
func adjacentToHeteroDoubleBond(m *Molecule, i int) bool {
	for _, nb := range m.Neighbors(i) {
		for _, b := range m.IncidentBonds(nb) {
			if b.Aromatic || b.Order != BondDouble {
				continue
			}
			other := b.A
			if other == nb {
				other = b.B
			}
			if other == i {
				continue
			}
			switch m.Atoms[other].Element {
			case "O", "N", "P", "S":
				return true
			}
		}
	}
	return false
}

// nearAromaticNitrogen reports whether aromatic atom i has an aromatic
// nitrogen one or two ring bonds away (the o:n and o:c:n exclusions for
// aromatic O/S acceptors).
func nearAromaticNitrogen(m *Molecule, i int) bool {
	for _, nb := range m.Neighbors(i) {
		if !m.Atoms[nb].Aromatic {
			continue
		}
		if m.Atoms[nb].Element == "N" {
			return true
		}
		if m.Atoms[nb].Element != "C" {
			continue
		}
		for _, nb2 := range m.Neighbors(nb) {
			if nb2 == i {
				continue
			}
			if m.Atoms[nb2].Aromatic && m.Atoms[nb2].Element == "N" {
				return true
			}
		}
	}
	return false
}

// isPi: aromatic carbon, or an alkene carbon whose double-bond partner has a
// further substituent, or an alkyne carbon.
func isPi(m *Molecule, i int) bool {
	a := m.Atoms[i]
	if a.Element != "C" {
		return false
	}
	if a.Aromatic {
		return true
	}
	for _, b := range m.IncidentBonds(i) {
		if b.Aromatic {
			continue
		}
		other := b.A
		if other == i {
			other = b.B
		}
		if m.Atoms[other].Element != "C" || m.Atoms[other].Aromatic {
			continue
		}
		switch b.Order {
		case BondTriple:
			return true
		case BondDouble:
			if partnerHasSingleBond(m, other, i) {
				return true
			}
		}
	}
	return false
}

// partnerHasSingleBond reports whether atom j has a single bond to any heavy
// atom other than exclude.
func partnerHasSingleBond(m *Molecule, j, exclude int) bool {
	for _, b := range m.IncidentBonds(j) {
		if b.Aromatic || b.Order != BondSingle {
			continue
		}
		other := b.A
		if other == j {
			other = b.B
		}
		if other != exclude {
			return true
		}
	}
	return false
}

func isHalogen(m *Molecule, i int) bool {
	switch m.Atoms[i].Element {
	case "F", "Cl", "Br", "I":
		return true
	}
	return false
}

// isBasic: any positively charged nitrogen, or a neutral primary/secondary
// amine whose carbon neighbors are all non-carbonyl, or a neutral tertiary
// amine bonded to three non-carbonyl aliphatic carbons.
func isBasic(m *Molecule, i int) bool {
	a := m.Atoms[i]
	if a.Element != "N" {
		return false
	}
	if a.Charge > 0 {
		return true
	}
	if a.Charge != 0 || a.Aromatic {
		return false
	}
	if m.hasBondOfOrder(i, BondDouble) || m.hasBondOfOrder(i, BondTriple) {
		return false
	}
	nbs := m.Neighbors(i)
	switch a.HCount {
	case 2:
		if len(nbs) != 1 {
			return false
		}
		return isNonCarbonylCarbon(m, nbs[0], true)
	case 1:
		if len(nbs) != 2 {
			return false
		}
		return isNonCarbonylCarbon(m, nbs[0], true) && isNonCarbonylCarbon(m, nbs[1], true)
	case 0:
		if len(nbs) != 3 {
			return false
		}
		for _, nb := range nbs {
			// Tertiary amines only count when every substituent is an
			// aliphatic carbon.
			if !isNonCarbonylCarbon(m, nb, false) {
				return false
			}
		}
		return true
	}
	return false
}

// isNonCarbonylCarbon reports whether atom j is a carbon (aromatic allowed
// when allowAromatic) without a double bond to oxygen.
func isNonCarbonylCarbon(m *Molecule, j int, allowAromatic bool) bool {
	a := m.Atoms[j]
	if a.Element != "C" {
		return false
	}
	if a.Aromatic && !allowAromatic {
		return false
	}
	for _, b := range m.IncidentBonds(j) {
		if b.Aromatic || b.Order != BondDouble {
			continue
		}
		other := b.A
		if other == j {
			other = b.B
		}
		if m.Atoms[other].Element == "O" {
			return false
		}
	}
	return true
}

// isAcidic: a carbon or sulfur double-bonded to O/S/P and single-bonded to a
// hydroxyl or anionic oxygen (carboxylic, sulfonic, and related acid groups).
func isAcidic(m *Molecule, i int) bool {
	a := m.Atoms[i]
	if a.Aromatic || (a.Element != "C" && a.Element != "S") {
		return false
	}
	hasHeteroDouble := false
	hasAcidOxygen := false
	for _, b := range m.IncidentBonds(i) {
		if b.Aromatic {
			continue
		}
		other := b.A
		if other == i {
			other = b.B
		}
		oa := m.Atoms[other]
		switch b.Order {
		case BondDouble:
			if oa.Element == "O" || oa.Element == "S" || oa.Element == "P" {
				hasHeteroDouble = true
			}
		case BondSingle:
			if oa.Element == "O" && (oa.HCount == 1 || oa.Charge == -1) {
				hasAcidOxygen = true
			}
		}
	}
	return hasHeteroDouble && hasAcidOxygen
}

// isAliphaticCarbon: a non-aromatic carbon with at least one single bond to a
// heavy atom, no alkene double bond, and no triple bond.  Carbonyl carbons
// qualify since their double bond goes to oxygen, not carbon.
func isAliphaticCarbon(m *Molecule, i int) bool {
	a := m.Atoms[i]
	if a.Element != "C" || a.Aromatic {
		return false
	}
	if m.hasBondOfOrder(i, BondTriple) {
		return false
	}
	hasSingle := false
	for _, b := range m.IncidentBonds(i) {
		if b.Aromatic {
			// A bond into an aromatic system still anchors the atom but is
			// neither the single bond the rule requires nor a disqualifier.
			continue
		}
		other := b.A
		if other == i {
			other = b.B
		}
		switch b.Order {
		case BondSingle:
			hasSingle = true
		case BondDouble:
			if m.Atoms[other].Element == "C" && partnerHasSingleBond(m, other, i) {
				return false
			}
		}
	}
	return hasSingle
}
