package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/scope"
	"github.com/aretw0/genson/pkg/tgl"
)

// SkipSentinel is the string term that resolves to nothing.
const SkipSentinel = "nih"

// MaxCount caps literal repeat counts. The runtime applies its own, lower,
// iteration ceiling when a count is realized.
const MaxCount = math.MaxInt32

var (
	fixedCountPattern = regexp.MustCompile(`^(.*)\*(\d+)$`)
	rangeCountPattern = regexp.MustCompile(`^(.*)\*\[\s*(\d+)\s*,\s*(\d+)\s*\]$`)
)

// ParseTerm parses the string shorthand of a term:
// "key", "key*N", "key*[min,max]", "#title" and the skip sentinel.
func ParseTerm(s string) domain.Term {
	switch {
	case s == "" || s == SkipSentinel:
		return domain.Term{Kind: domain.TermSkip}
	case strings.HasPrefix(s, "#"):
		return domain.Term{Kind: domain.TermTitle, Title: s[1:]}
	}

	if m := rangeCountPattern.FindStringSubmatch(s); m != nil {
		lo, hi := digitCount(m[2]), digitCount(m[3])
		return domain.Term{Kind: domain.TermKey, Key: m[1], Count: domain.Range(lo, hi)}
	}
	if m := fixedCountPattern.FindStringSubmatch(s); m != nil {
		return domain.Term{Kind: domain.TermKey, Key: m[1], Count: domain.Fixed(digitCount(m[2]))}
	}
	return domain.Term{Kind: domain.TermKey, Key: s, Count: domain.Once}
}

// compiler collects validation errors for one node while its slot is compiled.
type compiler struct {
	key  string
	errs []error
}

func (c *compiler) fail(field, reason string, value any) {
	c.errs = append(c.errs, &ValidationError{Key: c.key, Field: field, Reason: reason, Value: value})
}

// term compiles one raw term.
func (c *compiler) term(field string, raw any) domain.Term {
	switch v := raw.(type) {
	case nil:
		return domain.Term{Kind: domain.TermSkip}
	case string:
		return ParseTerm(v)
	case float64, bool:
		return domain.Term{Kind: domain.TermTitle, Title: tgl.ToString(v)}
	case map[string]any:
		return c.objectTerm(field, v)
	}
	c.fail(field, "unsupported term", raw)
	return domain.Term{Kind: domain.TermSkip}
}

// terms compiles a list of terms. Nested lists are spliced in place.
func (c *compiler) terms(field string, raw any) []domain.Term {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil
		}
		return []domain.Term{c.term(field, raw)}
	}
	out := make([]domain.Term, 0, len(list))
	for i, item := range list {
		f := fmt.Sprintf("%s[%d]", field, i)
		if nested, ok := item.([]any); ok {
			out = append(out, c.terms(f, nested)...)
			continue
		}
		out = append(out, c.term(f, item))
	}
	return out
}

func (c *compiler) objectTerm(field string, m map[string]any) domain.Term {
	// 1. repeat
	if rep, ok := m["repeat"]; ok && rep != nil {
		value, ok := m["value"]
		if !ok {
			c.fail(field+".value", "repeat requires a value", nil)
			return domain.Term{Kind: domain.TermSkip}
		}
		// {value: {value: x}} carries x
		if inner, ok := value.(map[string]any); ok {
			if v, ok := inner["value"]; ok && v != nil && !isTermObject(inner) {
				value = v
			}
		}
		inner := c.term(field+".value", value)
		return domain.Term{
			Kind:  domain.TermRepeat,
			Count: c.count(field+".repeat", rep),
			Value: &inner,
		}
	}

	// 2. ref
	if ref, ok := m["ref"]; ok && ref != nil {
		key, isString := ref.(string)
		if !isString {
			c.fail(field+".ref", "ref must be a node key", ref)
			return domain.Term{Kind: domain.TermSkip}
		}
		return domain.Term{Kind: domain.TermRef, Key: key}
	}

	// 3. continue
	if pred, ok := m["continue"]; ok && pred != nil {
		expr, err := tgl.DecodeExpr(pred)
		if err != nil {
			c.fail(field+".continue", err.Error(), pred)
			return domain.Term{Kind: domain.TermSkip}
		}
		inner := c.term(field+".value", m["value"])
		return domain.Term{Kind: domain.TermContinue, While: expr, Value: &inner}
	}

	// 4. anything else is an opaque literal leaf
	lit, _ := scope.Clone(m).(map[string]any)
	return domain.Term{Kind: domain.TermLiteral, Literal: lit}
}

func isTermObject(m map[string]any) bool {
	for _, k := range []string{"repeat", "ref", "continue"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// count compiles a repeat count: a number, a [min,max] pair, a numeric
// string, or an expression evaluated at expansion time.
func (c *compiler) count(field string, raw any) domain.Count {
	switch v := raw.(type) {
	case float64:
		return domain.Fixed(wholeCount(v))
	case string:
		n := tgl.ToNumber(v)
		if math.IsNaN(n) {
			c.fail(field, "count is not a number", raw)
			return domain.Fixed(0)
		}
		return domain.Fixed(wholeCount(n))
	case []any:
		if len(v) == 2 {
			lo, hi := tgl.ToNumber(v[0]), tgl.ToNumber(v[1])
			if !math.IsNaN(lo) && !math.IsNaN(hi) {
				return domain.Range(wholeCount(lo), wholeCount(hi))
			}
		}
		c.fail(field, "count range must be [min, max]", raw)
		return domain.Fixed(0)
	case map[string]any:
		expr, err := tgl.DecodeExpr(v)
		if err != nil {
			c.fail(field, err.Error(), raw)
			return domain.Fixed(0)
		}
		return domain.Count{Expr: expr}
	}
	c.fail(field, "unsupported count", raw)
	return domain.Fixed(0)
}

func wholeCount(f float64) int {
	switch {
	case f <= 0 || math.IsNaN(f):
		return 0
	case f >= MaxCount:
		return MaxCount
	}
	return int(math.Floor(f))
}

// digitCount parses an all-digit count, saturating at MaxCount.
func digitCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n > MaxCount {
		return MaxCount
	}
	return n
}
