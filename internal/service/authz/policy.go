package authz

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// Access is the kind of requirement a route places on its caller.
type Access int

const (
	// Public routes pass with or without a principal.
	Public Access = iota + 1

	// AuthenticatedAny routes need a principal with any role.
	AuthenticatedAny

	// RequiresRole routes need a principal holding Rule.Role.
	RequiresRole
)

// String implements fmt.Stringer.
func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case AuthenticatedAny:
		return "authenticated"
	case RequiresRole:
		return "requires_role"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

// Rule binds an access requirement to a method and path pattern.
//
// Patterns are slash-separated segments. A segment is a literal, a
// parameter written {name} that matches exactly one segment, or a final
// "*" that matches zero or more trailing segments. An empty Method
// matches every method.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    domain.Role
}

// PublicRoute returns a Rule that lets anyone through.
func PublicRoute(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: Public}
}

// Authenticated returns a Rule that requires any principal.
func Authenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AuthenticatedAny}
}

// RequireRole returns a Rule that requires a principal holding role.
func RequireRole(method, pattern string, role domain.Role) Rule {
	return Rule{Method: method, Pattern: pattern, Access: RequiresRole, Role: role}
}

// DefaultRule applies to requests no rule matches.
var DefaultRule = Rule{Pattern: "/*", Access: AuthenticatedAny}

type segmentKind int

const (
	wildcardSegment segmentKind = iota + 1
	paramSegment
	literalSegment
)

type segment struct {
	kind    segmentKind
	literal string
}

type compiledRule struct {
	rule     Rule
	segments []segment
	order    int
}

// Policy is an immutable, compiled route policy table.
type Policy struct {
	rules []compiledRule
}

// NewPolicy compiles rules into a Policy. It rejects malformed patterns,
// role rules without a known role, and rules that duplicate an earlier one.
func NewPolicy(rules ...Rule) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules))}
	seen := make(map[string]string, len(rules))

	for i, r := range rules {
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		segs, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, err
		}

		switch r.Access {
		case Public, AuthenticatedAny:
		case RequiresRole:
			if _, err := domain.ParseRole(string(r.Role)); err != nil {
				return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalidRule, r.Method, r.Pattern, err)
			}
		default:
			return nil, fmt.Errorf("%w: %s %s: unknown access %s", ErrInvalidRule, r.Method, r.Pattern, r.Access)
		}

		key := r.Method + " " + shapeOf(segs)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s %s duplicates %s", ErrInvalidRule, r.Method, r.Pattern, prev)
		}
		seen[key] = r.Pattern

		p.rules = append(p.rules, compiledRule{rule: r, segments: segs, order: i})
	}

	return p, nil
}

// MustPolicy is NewPolicy for statically declared tables. It panics on error.
func MustPolicy(rules ...Rule) *Policy {
	p, err := NewPolicy(rules...)
	if err != nil {
		// ALLOW-PANIC
		panic(err)
	}
	return p
}

// Match returns the most specific rule for the request, or DefaultRule.
//
// Specificity compares segments left to right: a literal beats a
// parameter, which beats a wildcard. A pattern that ends where the path
// ends beats one that only matches through a trailing wildcard. A rule
// naming the method beats one that does not. Remaining ties go to the
// rule declared first.
func (p *Policy) Match(method, path string) Rule {
	method = strings.ToUpper(method)
	parts := splitPath(path)

	var best *compiledRule
	for i := range p.rules {
		c := &p.rules[i]
		if c.rule.Method != "" && c.rule.Method != method {
			continue
		}
		if !matchSegments(c.segments, parts) {
			continue
		}
		if best == nil || moreSpecific(c, best) {
			best = c
		}
	}

	if best == nil {
		return DefaultRule
	}
	return best.rule
}

// Authorize evaluates the rule for method and path against the principal
// in ctx. It returns nil, ErrUnauthenticated, or ErrForbidden.
func (p *Policy) Authorize(ctx context.Context, method, path string) error {
	return Check(ctx, p.Match(method, path))
}

// Check evaluates a single rule against the principal in ctx.
func Check(ctx context.Context, rule Rule) error {
	if rule.Access == Public {
		return nil
	}

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	switch rule.Access {
	case AuthenticatedAny:
		return nil
	case RequiresRole:
		if principal.HasRole(rule.Role) {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

func compilePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRule, pattern)
	}

	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: pattern %q has a wildcard before its end", ErrInvalidRule, pattern)
			}
			segs = append(segs, segment{kind: wildcardSegment})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) > 2:
			segs = append(segs, segment{kind: paramSegment})
		case strings.ContainsAny(part, "{}*"):
			return nil, fmt.Errorf("%w: pattern %q has an invalid segment %q", ErrInvalidRule, pattern, part)
		default:
			segs = append(segs, segment{kind: literalSegment, literal: part})
		}
	}
	return segs, nil
}

// splitPath drops empty and "." segments, so "/a//b/./" is read as "/a/b".
// This can only make a path match a longer, more protected pattern.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, s := range raw {
		if s != "" && s != "." {
			parts = append(parts, s)
		}
	}
	return parts
}

func matchSegments(segs []segment, parts []string) bool {
	for i, s := range segs {
		if s.kind == wildcardSegment {
			return true
		}
		if i >= len(parts) {
			return false
		}
		if s.kind == literalSegment && s.literal != parts[i] {
			return false
		}
	}
	return len(segs) == len(parts)
}

func moreSpecific(a, b *compiledRule) bool {
	if c := compareSegments(a.segments, b.segments); c != 0 {
		return c > 0
	}
	if (a.rule.Method != "") != (b.rule.Method != "") {
		return a.rule.Method != ""
	}
	return a.order < b.order
}

// compareSegments returns a positive number when a is more specific than b.
func compareSegments(a, b []segment) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := cmp.Compare(a[i].kind, b[i].kind); c != 0 {
			return c
		}
	}
	// Equal up to the shorter pattern: the longer one can only match the
	// same path through a trailing wildcard, so the shorter one wins.
	return cmp.Compare(len(b), len(a))
}

func shapeOf(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		switch s.kind {
		case wildcardSegment:
			b.WriteByte('*')
		case paramSegment:
			b.WriteString("{}")
		default:
			b.WriteString(s.literal)
		}
	}
	return b.String()
}
