package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// ParseSMILES converts a SMILES string into a heavy-atom Molecule graph.
// The parser covers the subset of the grammar that appears in bioactivity
// corpora: organic-subset atoms, bracket atoms with charge and hydrogen
// counts, single/double/triple/aromatic bonds, branches, ring closures
// (including %nn two-digit labels), and dot-separated fragments.
// Stereo markers (/, \, @) are accepted and ignored; they do not affect
// topological distances or pharmacophore typing.
//
// A malformed string yields a CodeInvalidSMILES error; callers decide whether
// to skip the molecule or abort the batch.
func ParseSMILES(s string) (*Molecule, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.CodeInvalidSMILES, "empty SMILES string")
	}

	p := &smilesParser{input: s, prev: -1, rings: map[int]ringRef{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	mol := &Molecule{Atoms: p.atoms, Bonds: p.bonds}
	mol.buildAdjacency()
	assignImplicitHydrogens(mol, p.explicitH)
	return mol, nil
}

// ringRef records the first endpoint of an open ring-closure label.
type ringRef struct {
	atom  int
	order BondOrder
	// explicit marks a bond symbol written at the opening digit.
	explicit bool
}

type smilesParser struct {
	input string
	pos   int

	atoms []Atom
	bonds []Bond

	// explicitH[i] is true when atom i came from a bracket and carries an
	// explicit hydrogen count that must not be overwritten by the valence
	// model.
	explicitH map[int]bool

	prev      int   // index of the atom a new atom bonds to; -1 at start
	stack     []int // branch return points
	nextOrder BondOrder
	nextSet   bool // an explicit bond symbol precedes the next atom
	rings     map[int]ringRef
}

// organicValence is the default valence model for organic-subset atoms.
var organicValence = map[string]int{
	"B": 3, "C": 4, "N": 3, "O": 2, "P": 3, "S": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

func (p *smilesParser) fail(msg string) error {
	return errors.New(errors.CodeInvalidSMILES, msg).
		WithDetail(fmt.Sprintf("position %d in %q", p.pos, p.input))
}

func (p *smilesParser) run() error {
	if p.explicitH == nil {
		p.explicitH = map[int]bool{}
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '-' || c == '/' || c == '\\':
			p.setBond(BondSingle)
			p.pos++
		case c == '=':
			p.setBond(BondDouble)
			p.pos++
		case c == '#':
			p.setBond(BondTriple)
			p.pos++
		case c == ':':
			// Explicit aromatic bond; treated as an aromatic single bond.
			p.setBond(BondSingle)
			p.pos++
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch before any atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.fail("unbalanced closing parenthesis")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '.':
			// Fragment separator: the next atom starts a disconnected
			// component.
			p.prev = -1
			p.nextSet = false
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.closeRing(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.input) ||
				!isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
				return p.fail("%% ring label requires two digits")
			}
			label := int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
			if err := p.closeRing(label); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			if err := p.readBracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.readOrganicAtom(); err != nil {
				return err
			}
		}
	}
	if len(p.stack) != 0 {
		return p.fail("unbalanced opening parenthesis")
	}
	if len(p.rings) != 0 {
		return p.fail("unclosed ring bond")
	}
	if len(p.atoms) == 0 {
		return errors.New(errors.CodeInvalidSMILES, "no atoms in SMILES string")
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *smilesParser) setBond(order BondOrder) {
	p.nextOrder = order
	p.nextSet = true
}

// takeBond consumes the pending bond symbol, if any.
func (p *smilesParser) takeBond() (BondOrder, bool) {
	if p.nextSet {
		p.nextSet = false
		return p.nextOrder, true
	}
	return BondSingle, false
}

// addAtom appends the atom and bonds it to the previous one.
func (p *smilesParser) addAtom(a Atom) {
	idx := len(p.atoms)
	p.atoms = append(p.atoms, a)
	if p.prev >= 0 {
		order, explicit := p.takeBond()
		aromatic := !explicit && a.Aromatic && p.atoms[p.prev].Aromatic
		p.bonds = append(p.bonds, Bond{A: p.prev, B: idx, Order: order, Aromatic: aromatic})
	} else {
		p.takeBond()
	}
	p.prev = idx
}

func (p *smilesParser) closeRing(label int) error {
	if p.prev < 0 {
		return p.fail("ring closure before any atom")
	}
	order, explicit := p.takeBond()
	if ref, open := p.rings[label]; open {
		delete(p.rings, label)
		if ref.atom == p.prev {
			return p.fail("ring bond connects an atom to itself")
		}
		bondOrder := order
		bondExplicit := explicit
		if !bondExplicit && ref.explicit {
			bondOrder = ref.order
			bondExplicit = true
		}
		aromatic := !bondExplicit &&
			p.atoms[ref.atom].Aromatic && p.atoms[p.prev].Aromatic
		p.bonds = append(p.bonds, Bond{A: ref.atom, B: p.prev, Order: bondOrder, Aromatic: aromatic})
		return nil
	}
	p.rings[label] = ringRef{atom: p.prev, order: order, explicit: explicit}
	return nil
}

// readOrganicAtom consumes an organic-subset atom (two-letter halogens
// first, then single letters, aromatic lowercase included).
func (p *smilesParser) readOrganicAtom() error {
	rest := p.input[p.pos:]
	switch {
	case strings.HasPrefix(rest, "Cl"):
		p.addAtom(Atom{Element: "Cl"})
		p.pos += 2
		return nil
	case strings.HasPrefix(rest, "Br"):
		p.addAtom(Atom{Element: "Br"})
		p.pos += 2
		return nil
	}
	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.addAtom(Atom{Element: string(c)})
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.addAtom(Atom{Element: strings.ToUpper(string(c)), Aromatic: true})
	default:
		return p.fail("unexpected character " + string(c))
	}
	p.pos++
	return nil
}

// readBracketAtom consumes a [...] atom: optional isotope, symbol, ignored
// chirality, hydrogen count, and charge.
func (p *smilesParser) readBracketAtom() error {
	end := strings.IndexByte(p.input[p.pos:], ']')
	if end < 0 {
		return p.fail("unterminated bracket atom")
	}
	body := p.input[p.pos+1 : p.pos+end]
	consumed := end + 1
	if body == "" {
		return p.fail("empty bracket atom")
	}

	i := 0
	for i < len(body) && isDigit(body[i]) { // isotope, ignored
		i++
	}
	if i >= len(body) {
		return p.fail("bracket atom has no element symbol")
	}

	var elem string
	aromatic := false
	c := body[i]
	switch {
	case c >= 'A' && c <= 'Z':
		elem = string(c)
		i++
		if i < len(body) && body[i] >= 'a' && body[i] <= 'z' && body[i] != 'H' {
			// Two-letter symbol, but keep H-count parsing intact: a lowercase
			// letter here is part of the symbol unless it begins a modifier.
			if isElementTail(body[i]) {
				elem += string(body[i])
				i++
			}
		}
	case c == 'b' || c == 'c' || c == 'n' || c == 'o' || c == 'p' || c == 's':
		elem = strings.ToUpper(string(c))
		aromatic = true
		i++
	default:
		return p.fail("invalid element symbol in bracket atom")
	}

	hcount := 0
	charge := 0
	for i < len(body) {
		switch body[i] {
		case '@': // chirality, ignored
			i++
		case 'H':
			i++
			hcount = 1
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			if n > 0 {
				hcount = n
			}
		case '+', '-':
			sign := 1
			if body[i] == '-' {
				sign = -1
			}
			mag := 0
			for i < len(body) && (body[i] == '+' || body[i] == '-') {
				mag++
				i++
			}
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			if n > 0 {
				mag = n
			}
			charge = sign * mag
		default:
			return p.fail("unexpected character in bracket atom: " + string(body[i]))
		}
	}

	idx := len(p.atoms)
	p.addAtom(Atom{Element: elem, Aromatic: aromatic, Charge: charge, HCount: hcount})
	p.explicitH[idx] = true
	p.pos += consumed
	return nil
}

// isElementTail reports whether c can be the second letter of a two-letter
// element symbol we accept inside brackets.
func isElementTail(c byte) bool {
	switch c {
	case 'l', 'r', 'e', 'i', 'a', 'g', 'n', 'u', 'd', 'b', 't':
		return true
	}
	return false
}

// assignImplicitHydrogens fills Atom.HCount for organic-subset atoms using
// the default valence model.  Aromatic atoms reserve one valence unit for the
// delocalised system, so benzene carbons end up with one hydrogen and
// pyridine nitrogen with none.  Bracket atoms keep their explicit count.
func assignImplicitHydrogens(m *Molecule, explicitH map[int]bool) {
	for i := range m.Atoms {
		if explicitH[i] {
			continue
		}
		val, ok := organicValence[m.Atoms[i].Element]
		if !ok {
			continue
		}
		used := m.bondOrderSum(i)
		if m.Atoms[i].Aromatic {
			used++
		}
		h := val - used
		if h < 0 {
			h = 0
		}
		m.Atoms[i].HCount = h
	}
}
