package geometry

import (
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

// SyntaxError reports malformed path data. The geometry parsed before the
// error is still returned by Parse.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("path data: offset %d: %s", e.Offset, e.Msg)
}

// Parse interprets SVG path data (M L H V C S Q T A Z, absolute and
// relative). It always returns a usable Path; on malformed input the path
// contains everything up to the offending command and err is a *SyntaxError.
func Parse(d string) (*Path, error) {
	p := &interpreter{s: scanner{b: []byte(d)}}
	err := p.run()
	return p.b.path(), err
}

// MustParse is Parse for path data known to be valid, e.g. in tests and
// built-in glyphs. It panics on error.
func MustParse(d string) *Path {
	p, err := Parse(d)
	if err != nil {
		panic(err)
	}
	return p
}

type interpreter struct {
	s     scanner
	b     builder
	start Point // start of the current subpath

	// last control point of the previous C/S or Q/T, for reflection
	ctrl     Point
	prevKind byte
}

func (ip *interpreter) run() error {
	var cmd byte
	for {
		ip.s.skipSpace()
		if ip.s.eof() {
			return nil
		}

		c := ip.s.peek()
		switch {
		case isCommand(c):
			cmd = c
			ip.s.pos++
		case cmd == 0:
			return ip.s.errorf("expected moveto, found %q", c)
		case cmd == 'Z' || cmd == 'z':
			return ip.s.errorf("unexpected %q after closepath", c)
		case !ip.s.startsNumber():
			return ip.s.errorf("unexpected %q", c)
		}

		if len(ip.b.samples) == 0 && cmd != 'M' && cmd != 'm' {
			return ip.s.errorf("path must start with moveto, found %q", cmd)
		}
		if err := ip.exec(cmd); err != nil {
			return err
		}

		// extra coordinate pairs after a moveto are implicit lineto
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		}
	}
}

func (ip *interpreter) exec(cmd byte) error {
	rel := cmd >= 'a'
	cur := ip.b.cur
	origin := Point{}
	if rel {
		origin = cur
	}
	kind := cmd &^ 0x20 // upper case

	var err error
	switch kind {
	case 'M':
		var p Point
		if p, err = ip.point(origin); err == nil {
			ip.b.moveTo(p)
			ip.start = p
		}
	case 'L':
		var p Point
		if p, err = ip.point(origin); err == nil {
			ip.b.lineTo(p)
		}
	case 'H':
		var x float64
		if x, err = ip.s.number(); err == nil {
			ip.b.lineTo(Point{origin.X + x, cur.Y})
		}
	case 'V':
		var y float64
		if y, err = ip.s.number(); err == nil {
			ip.b.lineTo(Point{cur.X, origin.Y + y})
		}
	case 'C':
		var c1, c2, p Point
		if c1, c2, p, err = ip.points3(origin); err == nil {
			ip.b.cubicTo(c1, c2, p)
			ip.ctrl = c2
		}
	case 'S':
		var c2, p Point
		if c2, p, err = ip.points2(origin); err == nil {
			c1 := ip.reflect('C')
			ip.b.cubicTo(c1, c2, p)
			ip.ctrl = c2
		}
	case 'Q':
		var c, p Point
		if c, p, err = ip.points2(origin); err == nil {
			ip.b.quadTo(c, p)
			ip.ctrl = c
		}
	case 'T':
		var p Point
		if p, err = ip.point(origin); err == nil {
			c := ip.reflect('Q')
			ip.b.quadTo(c, p)
			ip.ctrl = c
		}
	case 'A':
		err = ip.arc(origin)
	case 'Z':
		ip.b.lineTo(ip.start)
		// a following command starts from the subpath start
		ip.b.moveTo(ip.start)
	}
	if err != nil {
		return err
	}

	switch kind {
	case 'C', 'S':
		ip.prevKind = 'C'
	case 'Q', 'T':
		ip.prevKind = 'Q'
	default:
		ip.prevKind = 0
	}
	return nil
}

// reflect returns the first control point of a smooth curve: the previous
// control point mirrored around the current point, or the current point if
// the previous command was not of the same family.
func (ip *interpreter) reflect(family byte) Point {
	cur := ip.b.cur
	if ip.prevKind != family {
		return cur
	}
	return Point{2*cur.X - ip.ctrl.X, 2*cur.Y - ip.ctrl.Y}
}

func (ip *interpreter) arc(origin Point) error {
	rx, err := ip.s.number()
	if err != nil {
		return err
	}
	ry, err := ip.s.number()
	if err != nil {
		return err
	}
	rot, err := ip.s.number()
	if err != nil {
		return err
	}
	large, err := ip.s.flag()
	if err != nil {
		return err
	}
	sweep, err := ip.s.flag()
	if err != nil {
		return err
	}
	p, err := ip.point(origin)
	if err != nil {
		return err
	}
	ip.b.arcTo(rx, ry, rot, large, sweep, p)
	return nil
}

func (ip *interpreter) point(origin Point) (Point, error) {
	x, err := ip.s.number()
	if err != nil {
		return Point{}, err
	}
	y, err := ip.s.number()
	if err != nil {
		return Point{}, err
	}
	return Point{origin.X + x, origin.Y + y}, nil
}

func (ip *interpreter) points2(origin Point) (a, b Point, err error) {
	if a, err = ip.point(origin); err != nil {
		return
	}
	b, err = ip.point(origin)
	return
}

func (ip *interpreter) points3(origin Point) (a, b, c Point, err error) {
	if a, err = ip.point(origin); err != nil {
		return
	}
	if b, err = ip.point(origin); err != nil {
		return
	}
	c, err = ip.point(origin)
	return
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// scanner tokenizes path data
type scanner struct {
	b   []byte
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.b) }

func (s *scanner) peek() byte { return s.b[s.pos] }

func (s *scanner) skipSpace() {
	for s.pos < len(s.b) {
		switch s.b[s.pos] {
		case ' ', '\t', '\n', '\r', '\f':
			s.pos++
		default:
			return
		}
	}
}

// skipSeparator skips whitespace and at most one comma
func (s *scanner) skipSeparator() {
	s.skipSpace()
	if s.pos < len(s.b) && s.b[s.pos] == ',' {
		s.pos++
		s.skipSpace()
	}
}

func (s *scanner) startsNumber() bool {
	if s.eof() {
		return false
	}
	c := s.peek()
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

func (s *scanner) number() (float64, error) {
	s.skipSeparator()
	if s.eof() {
		return 0, s.errorf("unexpected end of path data, expected number")
	}
	f, n := strconv.ParseFloat(s.b[s.pos:])
	if n == 0 {
		return 0, s.errorf("expected number, found %q", s.peek())
	}
	s.pos += n
	return f, nil
}

// flag reads an arc flag, which may be packed against the next token
func (s *scanner) flag() (bool, error) {
	s.skipSeparator()
	if s.eof() {
		return false, s.errorf("unexpected end of path data, expected flag")
	}
	switch s.peek() {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	}
	return false, s.errorf("expected arc flag, found %q", s.peek())
}

func (s *scanner) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}
