package structure

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Atom is one ATOM/HETATM record of a PDB file.
type Atom struct {
	Name    string // atom type, e.g. "CA"
	Residue string
	Chain   string
	X, Y, Z float64
	Element string
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
func (b Bounds) Depth() float64  { return b.MaxZ - b.MinZ }

// Center returns the middle of the box.
func (b Bounds) Center() (x, y, z float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2, (b.MinZ + b.MaxZ) / 2
}

// ParsePDB reads fixed-column ATOM and HETATM records.
// Lines that are too short or carry non-numeric coordinates are skipped.
func ParsePDB(r io.Reader) ([]Atom, error) {
	var atoms []Atom
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		atom, ok := parseAtomLine(scanner.Text())
		if ok {
			atoms = append(atoms, atom)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return atoms, nil
}

func parseAtomLine(line string) (Atom, bool) {
	if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
		return Atom{}, false
	}
	// Координаты заканчиваются на 54-й колонке
	if len(line) < 54 {
		return Atom{}, false
	}

	x, errX := parseCoord(line[30:38])
	y, errY := parseCoord(line[38:46])
	z, errZ := parseCoord(line[46:54])
	if errX != nil || errY != nil || errZ != nil {
		return Atom{}, false
	}

	atom := Atom{
		Name:    strings.TrimSpace(line[12:16]),
		Residue: strings.TrimSpace(line[17:20]),
		Chain:   strings.TrimSpace(line[21:22]),
		X:       x,
		Y:       y,
		Z:       z,
		Element: strings.TrimSpace(column(line, 76, 78)),
	}
	if atom.Element == "" {
		atom.Element = elementFromName(atom.Name)
	}
	return atom, true
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// column returns line[start:end] clipped to the line length.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// elementFromName guesses the element from the first letter of the atom name
// for files that leave columns 77-78 blank.
func elementFromName(name string) string {
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			return string(r)
		}
	}
	return ""
}

// ComputeBounds returns the bounding box of atoms; ok is false for an empty slice.
func ComputeBounds(atoms []Atom) (b Bounds, ok bool) {
	if len(atoms) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
	for _, a := range atoms {
		b.MinX = math.Min(b.MinX, a.X)
		b.MaxX = math.Max(b.MaxX, a.X)
		b.MinY = math.Min(b.MinY, a.Y)
		b.MaxY = math.Max(b.MaxY, a.Y)
		b.MinZ = math.Min(b.MinZ, a.Z)
		b.MaxZ = math.Max(b.MaxZ, a.Z)
	}
	return b, true
}
