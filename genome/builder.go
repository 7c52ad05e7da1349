package genome

import "strings"

// Plain returns an unbounded literal. The value mutator never touches it.
func Plain(v float64) Literal {
	return Literal{Value: v}
}

// Within returns a literal the value mutator may move inside [lo, hi].
func Within(v, lo, hi float64) Literal {
	return Literal{Value: v, Min: lo, Max: hi, Bounded: true}
}

// Point is a polygon vertex built from literals.
type Point struct {
	X, Y Literal
}

// Material holds the three material literals shared by every fixture.
type Material struct {
	Density     Literal
	Friction    Literal
	Restitution Literal
}

// Builder writes well-formed genome text: a body header followed by one
// chunk per fixture.
type Builder struct {
	header string
	chunks []string
}

// NewBuilder starts a genome whose body sits at (x, y) with the given kind
// and angle in degrees.
func NewBuilder(x, y Literal, kind BodyKind, angle Literal) *Builder {
	var sb strings.Builder
	sb.WriteString("B(")
	writeLiteral(&sb, x)
	sb.WriteByte(',')
	writeLiteral(&sb, y)
	sb.WriteByte(';')
	sb.WriteByte(kind.Tag())
	sb.WriteByte(';')
	writeLiteral(&sb, angle)
	sb.WriteByte(')')
	return &Builder{header: sb.String()}
}

// Polygon appends a polygon fixture chunk.
func (b *Builder) Polygon(points []Point, m Material) *Builder {
	b.chunks = append(b.chunks, PolygonChunk(points, m))
	return b
}

// Circle appends a circle fixture chunk.
func (b *Builder) Circle(cx, cy, r Literal, m Material) *Builder {
	b.chunks = append(b.chunks, CircleChunk(cx, cy, r, m))
	return b
}

// Box appends an axis-aligned w×h polygon centred on the body origin.
// Each vertex coordinate may drift by slack in either direction.
func (b *Builder) Box(w, h, slack float64, m Material) *Builder {
	b.chunks = append(b.chunks, BoxChunk(w, h, slack, m))
	return b
}

// Genome assembles header|chunk|chunk|...|
func (b *Builder) Genome() Genome {
	return join(b.header, b.chunks)
}

// PolygonChunk encodes one polygon fixture.
func PolygonChunk(points []Point, m Material) string {
	var sb strings.Builder
	sb.WriteString("F(P[")
	for i, p := range points {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		writeLiteral(&sb, p.X)
		sb.WriteByte(',')
		writeLiteral(&sb, p.Y)
		sb.WriteByte(')')
	}
	sb.WriteByte(']')
	writeMaterial(&sb, m)
	return sb.String()
}

// CircleChunk encodes one circle fixture.
func CircleChunk(cx, cy, r Literal, m Material) string {
	var sb strings.Builder
	sb.WriteString("F(C(")
	writeLiteral(&sb, cx)
	sb.WriteByte(',')
	writeLiteral(&sb, cy)
	sb.WriteByte(';')
	writeLiteral(&sb, r)
	sb.WriteByte(')')
	writeMaterial(&sb, m)
	return sb.String()
}

// BoxChunk encodes a w×h box polygon with per-coordinate slack bounds.
func BoxChunk(w, h, slack float64, m Material) string {
	hw, hh := w/2, h/2
	corner := func(x, y float64) Point {
		return Point{
			X: Within(x, x-slack, x+slack),
			Y: Within(y, y-slack, y+slack),
		}
	}
	return PolygonChunk([]Point{
		corner(-hw, -hh),
		corner(hw, -hh),
		corner(hw, hh),
		corner(-hw, hh),
	}, m)
}

func writeMaterial(sb *strings.Builder, m Material) {
	sb.WriteByte(';')
	writeLiteral(sb, m.Density)
	sb.WriteByte(';')
	writeLiteral(sb, m.Friction)
	sb.WriteByte(';')
	writeLiteral(sb, m.Restitution)
	sb.WriteByte(')')
}

func writeLiteral(sb *strings.Builder, lit Literal) {
	if lit.Bounded {
		sb.WriteByte('{')
		sb.WriteString(FormatNumber(lit.Min))
		sb.WriteByte(',')
		sb.WriteString(FormatNumber(lit.Max))
		sb.WriteByte('}')
	}
	sb.WriteString(FormatNumber(lit.Value))
}
