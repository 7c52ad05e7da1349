package genome

import (
	"fmt"
	"strconv"
)

// Decode parses g and realises it in w as it goes: the body is created as
// soon as its definition parses and each fixture right after its own.
//
// On error, decoding stops at the offending token. Resources created before
// that point stay in w and are listed in the returned partial plan; the
// caller decides whether to keep or release them.
func Decode(g Genome, w World) (BodyPlan, error) {
	d := &decoder{scanner: NewScanner(g), world: w}
	d.advance()
	d.advance()
	err := d.decode()
	return d.plan, err
}

// Parse decodes g without a physics world. Handles in the returned plan are
// sequential placeholders.
func Parse(g Genome) (BodyPlan, error) {
	return Decode(g, &discardWorld{})
}

// decoder is a recursive-descent parser with one token of lookahead.
type decoder struct {
	scanner *Scanner
	world   World
	cur     Token
	peek    Token
	plan    BodyPlan
}

func (d *decoder) advance() {
	d.cur = d.peek
	d.peek = d.scanner.Next()
}

func (d *decoder) fail(err error) error {
	return &DecodeError{Pos: d.cur.Pos, Token: d.cur, Err: err}
}

func (d *decoder) expect(kind TokenKind) error {
	if d.cur.Kind != kind {
		return d.fail(fmt.Errorf("%w: expected %s", ErrMalformed, kind))
	}
	d.advance()
	return nil
}

func (d *decoder) expectTag(tag string) error {
	if d.cur.Kind != TokenTag || d.cur.Text != tag {
		return d.fail(fmt.Errorf("%w: expected %q", ErrMalformed, tag))
	}
	d.advance()
	return nil
}

func (d *decoder) skipDelimiters() {
	for d.cur.Kind == TokenDelimiter {
		d.advance()
	}
}

func (d *decoder) decode() error {
	start := d.cur
	spec, err := d.bodyDef()
	if err != nil {
		return err
	}
	handle, err := d.world.CreateBody(spec)
	if err != nil {
		return &DecodeError{Pos: start.Pos, Token: start, Err: fmt.Errorf("creating body: %w", err)}
	}
	d.plan.Parts = append(d.plan.Parts, BodyPart{Spec: spec, Handle: handle})
	part := &d.plan.Parts[len(d.plan.Parts)-1]

	for {
		d.skipDelimiters()
		if d.cur.Kind == TokenEOF {
			return nil
		}
		if d.cur.Kind != TokenTag || d.cur.Text != "F" {
			return d.fail(fmt.Errorf("%w: expected fixture or end of genome", ErrMalformed))
		}

		start := d.cur
		fixture, err := d.fixtureDef()
		if err != nil {
			return err
		}
		fh, err := d.world.CreateFixture(part.Handle, fixture)
		if err != nil {
			return &DecodeError{Pos: start.Pos, Token: start, Err: fmt.Errorf("creating fixture: %w", err)}
		}
		part.Fixtures = append(part.Fixtures, fixture)
		part.FixtureHandles = append(part.FixtureHandles, fh)
	}
}

// bodyDef parses B(x,y;kind;angle).
func (d *decoder) bodyDef() (BodySpec, error) {
	var spec BodySpec
	if err := d.expectTag("B"); err != nil {
		return spec, err
	}
	if err := d.expect(TokenLParen); err != nil {
		return spec, err
	}
	x, err := d.value()
	if err != nil {
		return spec, err
	}
	if err := d.expect(TokenComma); err != nil {
		return spec, err
	}
	y, err := d.value()
	if err != nil {
		return spec, err
	}
	if err := d.expect(TokenSemicolon); err != nil {
		return spec, err
	}

	if d.cur.Kind != TokenTag {
		return spec, d.fail(fmt.Errorf("%w: expected body type", ErrMalformed))
	}
	kind, ok := bodyKindFromTag(d.cur.Text)
	if !ok {
		return spec, d.fail(ErrUnknownBodyType)
	}
	d.advance()

	if err := d.expect(TokenSemicolon); err != nil {
		return spec, err
	}
	angle, err := d.value()
	if err != nil {
		return spec, err
	}
	if err := d.expect(TokenRParen); err != nil {
		return spec, err
	}

	spec = BodySpec{X: x, Y: y, Kind: kind, Angle: angle}
	return spec, nil
}

// fixtureDef parses F(shape;density;friction;restitution).
func (d *decoder) fixtureDef() (FixtureSpec, error) {
	var spec FixtureSpec
	if err := d.expectTag("F"); err != nil {
		return spec, err
	}
	if err := d.expect(TokenLParen); err != nil {
		return spec, err
	}

	if d.cur.Kind != TokenTag {
		return spec, d.fail(fmt.Errorf("%w: expected shape", ErrMalformed))
	}
	var err error
	switch d.cur.Text {
	case "P":
		d.advance()
		spec.Shape = ShapePolygon
		spec.Vertices, err = d.polygon()
	case "C":
		d.advance()
		spec.Shape = ShapeCircle
		spec.Center, spec.Radius, err = d.circle()
	default:
		return spec, d.fail(ErrUnknownShape)
	}
	if err != nil {
		return spec, err
	}

	material := [3]*float64{&spec.Density, &spec.Friction, &spec.Restitution}
	for _, dst := range material {
		if err := d.expect(TokenSemicolon); err != nil {
			return spec, err
		}
		if *dst, err = d.value(); err != nil {
			return spec, err
		}
	}
	if err := d.expect(TokenRParen); err != nil {
		return spec, err
	}
	return spec, nil
}

// polygon parses [(x,y),(x,y),...] after the P tag.
func (d *decoder) polygon() ([]Vec2, error) {
	open := d.cur
	if err := d.expect(TokenLBracket); err != nil {
		return nil, err
	}
	var verts []Vec2
	for {
		p, err := d.point()
		if err != nil {
			return nil, err
		}
		verts = append(verts, p)
		if d.cur.Kind != TokenComma {
			break
		}
		d.advance()
	}
	if err := d.expect(TokenRBracket); err != nil {
		return nil, err
	}
	if len(verts) < 3 {
		return nil, &DecodeError{Pos: open.Pos, Token: open, Err: ErrTooFewVertices}
	}
	return verts, nil
}

func (d *decoder) point() (Vec2, error) {
	return d.pointUntil(TokenRParen)
}

// circle parses (x,y;r) after the C tag.
func (d *decoder) circle() (Vec2, float64, error) {
	center, err := d.pointUntil(TokenSemicolon)
	if err != nil {
		return Vec2{}, 0, err
	}
	r, err := d.value()
	if err != nil {
		return Vec2{}, 0, err
	}
	if err := d.expect(TokenRParen); err != nil {
		return Vec2{}, 0, err
	}
	return center, r, nil
}

// pointUntil parses "(x,y" followed by sep.
func (d *decoder) pointUntil(sep TokenKind) (Vec2, error) {
	if err := d.expect(TokenLParen); err != nil {
		return Vec2{}, err
	}
	x, err := d.value()
	if err != nil {
		return Vec2{}, err
	}
	if err := d.expect(TokenComma); err != nil {
		return Vec2{}, err
	}
	y, err := d.value()
	if err != nil {
		return Vec2{}, err
	}
	if err := d.expect(sep); err != nil {
		return Vec2{}, err
	}
	return Vec2{X: x, Y: y}, nil
}

// value parses a literal and strips its bound.
func (d *decoder) value() (float64, error) {
	lit, err := d.literal()
	return lit.Value, err
}

// literal parses [{min,max}]number.
func (d *decoder) literal() (Literal, error) {
	var lit Literal
	if d.cur.Kind == TokenLBrace {
		open := d.cur
		d.advance()
		lo, err := d.number()
		if err != nil {
			return lit, err
		}
		if err := d.expect(TokenComma); err != nil {
			return lit, err
		}
		hi, err := d.number()
		if err != nil {
			return lit, err
		}
		if err := d.expect(TokenRBrace); err != nil {
			return lit, err
		}
		if lo > hi {
			return lit, &DecodeError{Pos: open.Pos, Token: open, Err: ErrInvertedBound}
		}
		lit.Bounded, lit.Min, lit.Max = true, lo, hi
	}
	v, err := d.number()
	if err != nil {
		return lit, err
	}
	lit.Value = v
	return lit, nil
}

func (d *decoder) number() (float64, error) {
	if d.cur.Kind != TokenNumber {
		return 0, d.fail(fmt.Errorf("%w: expected number", ErrBadLiteral))
	}
	v, err := strconv.ParseFloat(d.cur.Text, 64)
	if err != nil {
		return 0, d.fail(fmt.Errorf("%w: %v", ErrBadLiteral, err))
	}
	d.advance()
	return v, nil
}

// discardWorld hands out sequential handles and keeps nothing.
type discardWorld struct {
	next uint32
}

func (w *discardWorld) CreateBody(BodySpec) (BodyHandle, error) {
	w.next++
	return BodyHandle(w.next), nil
}

func (w *discardWorld) CreateFixture(BodyHandle, FixtureSpec) (FixtureHandle, error) {
	w.next++
	return FixtureHandle(w.next), nil
}
