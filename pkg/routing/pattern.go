package routing

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DefaultConstraint matches a single path segment.
const DefaultConstraint = `[^/]+`

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type piece struct {
	literal    string
	param      string
	constraint string
	validator  *regexp.Regexp
}

func (p piece) isParam() bool {
	return p.param != ""
}

type segment struct {
	pieces   []piece
	optional bool
}

// pattern is a parsed and compiled URL template.
type pattern struct {
	template      string
	segments      []segment
	trailingSlash bool
	params        []string
	optional      map[string]bool
	regex         *regexp.Regexp
}

// Compiled is the serializable form of a compiled pattern.
type Compiled struct {
	Template string   `yaml:"template"`
	Regex    string   `yaml:"regex"`
	Params   []string `yaml:"params,omitempty"`
}

// compilePattern parses tpl and builds its matching regex. Constraints in
// requirements override inline ones. A non-nil cached entry for the same
// template skips regex assembly.
func compilePattern(tpl string, requirements map[string]string, cached *Compiled) (*pattern, error) {
	if !strings.HasPrefix(tpl, "/") {
		tpl = "/" + tpl
	}

	p, err := parseTemplate(tpl)
	if err != nil {
		return nil, err
	}

	for name := range requirements {
		if !slices.Contains(p.params, name) {
			return nil, fmt.Errorf("%w: requirement for unknown parameter %q in %q", ErrBadRouteConfiguration, name, tpl)
		}
	}

	for i := range p.segments {
		for j := range p.segments[i].pieces {
			pc := &p.segments[i].pieces[j]
			if !pc.isParam() {
				continue
			}
			if c, ok := requirements[pc.param]; ok {
				pc.constraint = c
			}
			v, err := regexp.Compile("^(?:" + pc.constraint + ")$")
			if err != nil {
				return nil, fmt.Errorf("%w: invalid constraint for %q in %q: %w", ErrBadRouteConfiguration, pc.param, tpl, err)
			}
			if v.NumSubexp() > 0 {
				return nil, fmt.Errorf("%w: constraint for %q in %q must not contain capturing groups, use (?:...)", ErrBadRouteConfiguration, pc.param, tpl)
			}
			pc.validator = v
		}
	}

	if cached != nil && cached.Template == tpl && cached.Regex != "" {
		re, err := regexp.Compile(cached.Regex)
		if err == nil && re.NumSubexp() == len(p.params) {
			p.regex = re
			return p, nil
		}
	}

	re, err := regexp.Compile(p.buildRegex())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadRouteConfiguration, tpl, err)
	}
	p.regex = re
	return p, nil
}

func parseTemplate(tpl string) (*pattern, error) {
	p := &pattern{template: tpl, optional: make(map[string]bool)}
	if tpl == "/" {
		return p, nil
	}

	var (
		cur   segment
		lit   strings.Builder
		depth int
		start int
	)
	flushLiteral := func() {
		if lit.Len() > 0 {
			cur.pieces = append(cur.pieces, piece{literal: lit.String()})
			lit.Reset()
		}
	}
	endSegment := func() error {
		flushLiteral()
		if len(cur.pieces) == 0 {
			return fmt.Errorf("%w: empty segment in %q", ErrBadRouteConfiguration, tpl)
		}
		p.segments = append(p.segments, cur)
		cur = segment{}
		return nil
	}

	for i := 1; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '{':
			if depth == 0 {
				flushLiteral()
				start = i
			}
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrBadRouteConfiguration, tpl)
			}
			if depth == 0 {
				pc, optional, err := parseParam(tpl[start+1 : i])
				if err != nil {
					return nil, fmt.Errorf("%w in %q", err, tpl)
				}
				if slices.Contains(p.params, pc.param) {
					return nil, fmt.Errorf("%w: duplicate parameter %q in %q", ErrBadRouteConfiguration, pc.param, tpl)
				}
				if optional {
					if cur.optional {
						return nil, fmt.Errorf("%w: segment with more than one optional parameter in %q", ErrBadRouteConfiguration, tpl)
					}
					cur.optional = true
					p.optional[pc.param] = true
				}
				p.params = append(p.params, pc.param)
				cur.pieces = append(cur.pieces, pc)
			}
		case c == '/' && depth == 0:
			if i == len(tpl)-1 {
				p.trailingSlash = true
				continue
			}
			if err := endSegment(); err != nil {
				return nil, err
			}
		case depth == 0:
			lit.WriteByte(c)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrBadRouteConfiguration, tpl)
	}
	if err := endSegment(); err != nil {
		return nil, err
	}

	seenOptional := false
	for _, s := range p.segments {
		if s.optional {
			seenOptional = true
			for _, pc := range s.pieces {
				if pc.isParam() && !p.optional[pc.param] {
					return nil, fmt.Errorf("%w: required parameter %q shares a segment with an optional one in %q", ErrBadRouteConfiguration, pc.param, tpl)
				}
			}
			continue
		}
		if seenOptional {
			return nil, fmt.Errorf("%w: optional segments must be trailing in %q", ErrBadRouteConfiguration, tpl)
		}
	}
	if p.trailingSlash && len(p.segments) > 0 && p.segments[0].optional {
		return nil, fmt.Errorf("%w: a pattern made only of optional segments cannot end with a slash: %q", ErrBadRouteConfiguration, tpl)
	}

	return p, nil
}

// parseParam parses the inside of a {...} token: name, name? or name:regex.
func parseParam(s string) (piece, bool, error) {
	name, constraint, hasConstraint := strings.Cut(s, ":")
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")

	if !paramName.MatchString(name) {
		return piece{}, false, fmt.Errorf("%w: invalid parameter name %q", ErrBadRouteConfiguration, name)
	}
	if !hasConstraint {
		constraint = DefaultConstraint
	}
	if constraint == "" {
		return piece{}, false, fmt.Errorf("%w: empty constraint for %q", ErrBadRouteConfiguration, name)
	}
	return piece{param: name, constraint: constraint}, optional, nil
}

func (p *pattern) buildRegex() string {
	if len(p.segments) == 0 {
		return "^/$"
	}

	var b strings.Builder
	b.WriteByte('^')

	firstOptional := len(p.segments)
	for i, s := range p.segments {
		if s.optional {
			firstOptional = i
			break
		}
		b.WriteByte('/')
		p.writePieces(&b, s)
	}

	if opt := p.segments[firstOptional:]; len(opt) > 0 {
		lead := "/"
		if firstOptional == 0 {
			b.WriteByte('/')
			lead = ""
		}
		var inner strings.Builder
		p.writeOptional(&inner, opt, lead)
		b.WriteString(inner.String())
	}

	if p.trailingSlash {
		b.WriteByte('/')
	}
	b.WriteByte('$')
	return b.String()
}

// writeOptional nests each optional segment inside the previous one so a
// later segment can only match if the earlier ones did.
func (p *pattern) writeOptional(b *strings.Builder, segs []segment, sep string) {
	b.WriteString("(?:")
	b.WriteString(sep)
	p.writePieces(b, segs[0])
	if len(segs) > 1 {
		p.writeOptional(b, segs[1:], "/")
	}
	b.WriteString(")?")
}

func (p *pattern) writePieces(b *strings.Builder, s segment) {
	for _, pc := range s.pieces {
		if !pc.isParam() {
			b.WriteString(regexp.QuoteMeta(pc.literal))
			continue
		}
		b.WriteString("((?:" + pc.constraint + "))")
	}
}

// isStatic reports whether the template has no parameters.
func (p *pattern) isStatic() bool {
	return len(p.params) == 0
}

// match returns the captured parameter values. Optional parameters that did
// not participate in the match are absent from the map.
func (p *pattern) match(path string) (map[string]string, bool) {
	idx := p.regex.FindStringSubmatchIndex(path)
	if idx == nil {
		return nil, false
	}
	values := make(map[string]string, len(p.params))
	for i, name := range p.params {
		lo, hi := idx[2*(i+1)], idx[2*(i+1)+1]
		if lo < 0 {
			continue
		}
		values[name] = path[lo:hi]
	}
	return values, true
}

func (p *pattern) compiled() Compiled {
	return Compiled{Template: p.template, Regex: p.regex.String(), Params: slices.Clone(p.params)}
}
