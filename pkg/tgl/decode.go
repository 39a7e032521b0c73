package tgl

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// rawNode mirrors the JSON shape of a node or expression object.
// Absent fields stay nil; presence checks go against the source map.
type rawNode struct {
	Type      string         `mapstructure:"type"`
	Text      any            `mapstructure:"text"`
	Items     any            `mapstructure:"items"`
	Value     any            `mapstructure:"value"`
	Expr      any            `mapstructure:"expr"`
	Times     any            `mapstructure:"times"`
	Separator any            `mapstructure:"separator"`
	Weight    any            `mapstructure:"weight"`
	Wt        any            `mapstructure:"wt"`
	Index     string         `mapstructure:"index"`
	Prop      map[string]any `mapstructure:"prop"`
	Props     map[string]any `mapstructure:"props"`
	Decl      any            `mapstructure:"decl"`
	Decls     any            `mapstructure:"decls"`
	Before    []any          `mapstructure:"before"`
	Default   any            `mapstructure:"default"`
	To        any            `mapstructure:"to"`
	Path      any            `mapstructure:"path"`
	Else      any            `mapstructure:"else"`
	Args      []any          `mapstructure:"args"`
	Name      string         `mapstructure:"name"`
	Branch    []any          `mapstructure:"branch"`
	Op        string         `mapstructure:"op"`
	Left      any            `mapstructure:"left"`
	Right     any            `mapstructure:"right"`
	Cond      any            `mapstructure:"cond"`
	Then      any            `mapstructure:"then"`
}

var moduleIndexPattern = regexp.MustCompile(`^\$(\d+)$`)

func decodeRaw(m map[string]any) (*rawNode, error) {
	var r rawNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &r,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("malformed node: %w", err)
	}
	return &r, nil
}

func normalizeType(t string) string {
	switch t {
	case TypeSeq:
		return TypeSequence
	case "Roulette":
		return TypeRoulette
	}
	return t
}

func isNodeType(t string) bool {
	switch t {
	case TypeText, TypeSequence, TypeOption, TypeRoulette, TypeRepetition,
		TypeDelegate, TypeLayer, TypeModule, TypeVec, TypeSet, TypeEffect:
		return true
	}
	return false
}

// DecodeJSON parses a JSON document into a node.
func DecodeJSON(data []byte) (Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid TGL document: %w", err)
	}
	return Decode(Normalize(raw))
}

// MustDecode is like Decode but panics on error.
func MustDecode(raw any) Node {
	n, err := Decode(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// Decode converts a JSON-shaped value into a node.
// Strings, numbers and booleans become Text; lists become Sequence; objects
// are dispatched on their "type" field. Unrecognised tags decode to Unknown.
func Decode(raw any) (Node, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Node:
		return v, nil
	case string:
		return &Text{Text: v}, nil
	case bool, float64, int, int64, json.Number:
		return &Text{Text: ToString(Normalize(v))}, nil
	case []any:
		items, err := decodeList(v)
		if err != nil {
			return nil, err
		}
		return &Sequence{Items: items}, nil
	case map[string]any:
		return decodeMap(v)
	}
	return &Unknown{Type: fmt.Sprintf("%T", raw)}, nil
}

func decodeList(raw any) ([]Node, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		list = []any{raw}
	}
	out := make([]Node, 0, len(list))
	for i, item := range list {
		n, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeMap(m map[string]any) (Node, error) {
	r, err := decodeRaw(m)
	if err != nil {
		return nil, err
	}

	switch t := normalizeType(r.Type); t {
	case TypeText:
		return &Text{Text: ToString(r.Text)}, nil

	case TypeSequence, TypeOption, TypeVec, TypeEffect:
		items, err := decodeList(r.Items)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		switch t {
		case TypeSequence:
			return &Sequence{Items: items}, nil
		case TypeOption:
			return &Option{Items: items}, nil
		case TypeVec:
			return &Vec{Items: items}, nil
		}
		return &Effect{Items: items}, nil

	case TypeRoulette:
		return decodeRoulette(r)

	case TypeRepetition:
		return decodeRepetition(r)

	case TypeDelegate:
		return decodeDelegate(r)

	case TypeLayer:
		return decodeLayer(r)

	case TypeModule:
		return decodeModule(m, r)

	case TypeRef, TypeVar:
		ref := &Ref{Path: firstString(r.To, r.Path)}
		if r.Else != nil {
			if ref.Else, err = Decode(r.Else); err != nil {
				return nil, fmt.Errorf("ref else: %w", err)
			}
		}
		return ref, nil

	case TypeExpression, TypeExpr:
		e, err := decodeWrappedExpr(r)
		if err != nil {
			return nil, err
		}
		return &ExprNode{Expr: e}, nil

	case TypeCall:
		call, err := decodeCall(r)
		if err != nil {
			return nil, err
		}
		return &CallNode{Call: call}, nil

	case TypeSet:
		value, err := DecodeExpr(r.Value)
		if err != nil {
			return nil, fmt.Errorf("set %v: %w", r.Path, err)
		}
		return &Set{Path: ToString(r.Path), Value: value}, nil

	default:
		return &Unknown{Type: r.Type}, nil
	}
}

func decodeRoulette(r *rawNode) (Node, error) {
	list, ok := r.Items.([]any)
	if !ok && r.Items != nil {
		list = []any{r.Items}
	}
	node := &Roulette{Items: make([]WeightedItem, 0, len(list))}
	for i, item := range list {
		wi, err := decodeWeightedItem(item)
		if err != nil {
			return nil, fmt.Errorf("roulette item %d: %w", i, err)
		}
		node.Items = append(node.Items, wi)
	}
	return node, nil
}

// decodeWeightedItem accepts {weight|wt, value} wrappers as well as typed
// nodes carrying their own weight and bare literals.
func decodeWeightedItem(item any) (WeightedItem, error) {
	m, ok := item.(map[string]any)
	if !ok {
		n, err := Decode(item)
		return WeightedItem{Value: n}, err
	}

	var wi WeightedItem
	var err error
	weight, hasWeight := m["weight"]
	if !hasWeight {
		weight, hasWeight = m["wt"]
	}
	if hasWeight {
		if wi.Weight, err = DecodeExpr(weight); err != nil {
			return wi, fmt.Errorf("weight: %w", err)
		}
	}

	if _, typed := m["type"]; !typed {
		if value, ok := m["value"]; ok {
			wi.Value, err = Decode(value)
			return wi, err
		}
	}
	wi.Value, err = Decode(m)
	return wi, err
}

func decodeRepetition(r *rawNode) (Node, error) {
	times, err := DecodeExpr(r.Times)
	if err != nil {
		return nil, fmt.Errorf("repetition times: %w", err)
	}
	value, err := Decode(r.Value)
	if err != nil {
		return nil, fmt.Errorf("repetition value: %w", err)
	}
	sep, err := Decode(r.Separator)
	if err != nil {
		return nil, fmt.Errorf("repetition separator: %w", err)
	}
	return &Repetition{Times: times, Value: value, Separator: sep}, nil
}

func decodeDelegate(r *rawNode) (Node, error) {
	weight, err := DecodeExpr(r.Weight)
	if err != nil {
		return nil, fmt.Errorf("delegate weight: %w", err)
	}
	value, err := Decode(r.Value)
	if err != nil {
		return nil, fmt.Errorf("delegate value: %w", err)
	}
	sep, err := Decode(r.Separator)
	if err != nil {
		return nil, fmt.Errorf("delegate separator: %w", err)
	}
	index := r.Index
	if index == "" {
		index = "i"
	}
	return &Delegate{Weight: weight, Value: value, Index: index, Separator: sep}, nil
}

func decodeLayer(r *rawNode) (Node, error) {
	layer := &Layer{}

	props := r.Prop
	if props == nil {
		props = r.Props
	}
	if props != nil {
		layer.Props = make(map[string]any, len(props))
		for k, v := range props {
			// {value: x} wrappers carry the value itself
			if wrapped, ok := v.(map[string]any); ok {
				if inner, ok := wrapped["value"]; ok {
					v = inner
				}
			}
			layer.Props[k] = v
		}
	}

	declsRaw := r.Decl
	if declsRaw == nil {
		declsRaw = r.Decls
	}
	decls, err := decodeDecls(declsRaw)
	if err != nil {
		return nil, fmt.Errorf("layer decls: %w", err)
	}
	layer.Decls = decls

	for i, hook := range r.Before {
		n, err := Decode(hook)
		if err != nil {
			return nil, fmt.Errorf("layer before %d: %w", i, err)
		}
		switch n.(type) {
		case *Set, *Effect:
			layer.Before = append(layer.Before, n)
		}
	}

	switch items := r.Items.(type) {
	case []any:
		if layer.Items, err = decodeList(items); err != nil {
			return nil, fmt.Errorf("layer items: %w", err)
		}
	case map[string]any:
		if layer.Item, err = Decode(items); err != nil {
			return nil, fmt.Errorf("layer item: %w", err)
		}
	}
	return layer, nil
}

func decodeModule(m map[string]any, r *rawNode) (Node, error) {
	items, err := decodeList(r.Items)
	if err != nil {
		return nil, fmt.Errorf("module: %w", err)
	}
	mod := &Module{Items: items, DefaultIndex: -1}

	if s, ok := r.Default.(string); ok {
		if sub := moduleIndexPattern.FindStringSubmatch(s); sub != nil {
			mod.DefaultIndex, _ = strconv.Atoi(sub[1])
			return mod, nil
		}
	}
	if _, ok := m["default"]; ok {
		if mod.Default, err = Decode(r.Default); err != nil {
			return nil, fmt.Errorf("module default: %w", err)
		}
		if mod.Default == nil {
			mod.Default = &Text{}
		}
	}
	return mod, nil
}

func decodeCall(r *rawNode) (*CallExpr, error) {
	name := firstString(r.Path, r.Name)
	call := &CallExpr{Name: name}
	for i, a := range r.Args {
		e, err := DecodeExpr(a)
		if err != nil {
			return nil, fmt.Errorf("call %s arg %d: %w", name, i, err)
		}
		call.Args = append(call.Args, e)
	}
	return call, nil
}

func decodeDecls(raw any) ([]Decl, error) {
	var out []Decl
	switch v := raw.(type) {
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			if name == "" {
				continue
			}
			d, err := decodeDecl(name, m)
			if err != nil {
				return nil, fmt.Errorf("decl %d: %w", i, err)
			}
			if d != nil {
				out = append(out, d)
			}
		}
	case map[string]any:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			m, ok := v[name].(map[string]any)
			if !ok {
				continue
			}
			d, err := decodeDecl(name, m)
			if err != nil {
				return nil, fmt.Errorf("decl %s: %w", name, err)
			}
			if d != nil {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func decodeDecl(name string, m map[string]any) (Decl, error) {
	r, err := decodeRaw(m)
	if err != nil {
		return nil, err
	}
	switch r.Type {
	case TypeDomain:
		return decodeDomain(name, r.Branch), nil
	case TypeMatch:
		return decodeMatch(name, r.Branch)
	}
	return nil, nil
}

func decodeDomain(name string, branches []any) *Domain {
	d := &Domain{Name: name}
	for _, b := range branches {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		label := firstString(m["string"], m["label"])
		br := DomainBranch{Label: label}
		switch rng := m["range"].(type) {
		case float64:
			br.Values = append(br.Values, rng)
		case []any:
			for _, r := range rng {
				switch x := r.(type) {
				case float64:
					br.Values = append(br.Values, x)
				case []any:
					if len(x) != 2 {
						continue
					}
					lo, hi := ToNumber(x[0]), ToNumber(x[1])
					br.Ranges = append(br.Ranges, [2]float64{lo, hi})
				}
			}
		default:
			continue
		}
		d.Branches = append(d.Branches, br)
	}
	return d
}

func decodeMatch(name string, branches []any) (*Match, error) {
	match := &Match{Name: name}
	for i, b := range branches {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		reqs, ok := m["req"].([]any)
		if !ok {
			continue
		}
		to, err := Decode(m["to"])
		if err != nil {
			return nil, fmt.Errorf("match %s branch %d: %w", name, i, err)
		}
		br := MatchBranch{To: to}
		for j, rq := range reqs {
			req, err := decodeRequirement(rq)
			if err != nil {
				return nil, fmt.Errorf("match %s branch %d req %d: %w", name, i, j, err)
			}
			br.Reqs = append(br.Reqs, req)
		}
		match.Branches = append(match.Branches, br)
	}
	return match, nil
}

func decodeRequirement(raw any) (Requirement, error) {
	var req Requirement
	m, ok := raw.(map[string]any)
	if !ok {
		// a bare value requires equality
		if raw != nil {
			req.Eq, req.HasEq = raw, true
		}
		return req, nil
	}
	req.Domain = firstString(m["domain"])
	if idx, ok := m["index"]; ok && idx != nil {
		req.Index = ToString(idx)
	}
	if eq, ok := m["eq"]; ok {
		req.Eq, req.HasEq = eq, true
	}
	if e, ok := m["expr"]; ok {
		expr, err := DecodeExpr(e)
		if err != nil {
			return req, err
		}
		req.Expr = expr
	}
	return req, nil
}

// DecodeExpr converts a JSON-shaped value into an expression. A nil input
// yields a nil Expr, which evaluates to "".
func DecodeExpr(raw any) (Expr, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Expr:
		return v, nil
	case string, float64, bool:
		return &Literal{Value: v}, nil
	case int, int64, json.Number:
		return &Literal{Value: Normalize(v)}, nil
	case []any:
		parts := make([]Expr, 0, len(v))
		for i, p := range v {
			e, err := DecodeExpr(p)
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
			parts = append(parts, e)
		}
		return &Concat{Parts: parts}, nil
	case map[string]any:
		return decodeExprMap(v)
	}
	return &Literal{Value: raw}, nil
}

func decodeExprMap(m map[string]any) (Expr, error) {
	r, err := decodeRaw(m)
	if err != nil {
		return nil, err
	}

	switch t := normalizeType(r.Type); t {
	case TypeExpr, TypeExpression:
		return decodeWrappedExpr(r)
	case TypeRef, TypeVar:
		return &PathExpr{Path: firstString(r.To, r.Path, r.Value)}, nil
	case TypeCall:
		return decodeCall(r)
	}

	if r.Op != "" {
		return decodeOp(r)
	}
	if arr, ok := r.Expr.([]any); ok {
		return decodeExprArray(arr)
	}
	if isNodeType(normalizeType(r.Type)) {
		n, err := decodeMap(m)
		if err != nil {
			return nil, err
		}
		return &NodeExpr{Node: n}, nil
	}
	return &Literal{Value: m}, nil
}

// decodeWrappedExpr unwraps a typed expr/expression node. An array payload
// is joined like any other array; only the untyped {"expr": [...]} form
// reads operators.
func decodeWrappedExpr(r *rawNode) (Expr, error) {
	if r.Value != nil {
		return DecodeExpr(r.Value)
	}
	return DecodeExpr(r.Expr)
}

// decodeExprArray handles the compact forms ["ref", path], ["var", path]
// and [left, op, right] of an untyped {"expr": [...]} object.
func decodeExprArray(arr []any) (Expr, error) {
	if len(arr) == 0 {
		return &Literal{Value: ""}, nil
	}
	if head, ok := arr[0].(string); ok && len(arr) >= 2 && (head == TypeRef || head == TypeVar) {
		return &PathExpr{Path: ToString(arr[1])}, nil
	}
	if len(arr) == 3 {
		if op, ok := arr[1].(string); ok {
			return decodeOp(&rawNode{Op: op, Left: arr[0], Right: arr[2]})
		}
	}
	return DecodeExpr(arr)
}

func decodeOp(r *rawNode) (Expr, error) {
	switch r.Op {
	case OpGet:
		return &PathExpr{Path: firstString(r.Path, r.Value)}, nil

	case OpNot:
		operand, err := DecodeExpr(r.Left)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: r.Op, Operand: operand}, nil

	case OpTernary:
		cond, err := DecodeExpr(r.Cond)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpr(r.Then)
		if err != nil {
			return nil, err
		}
		els, err := DecodeExpr(r.Else)
		if err != nil {
			return nil, err
		}
		return &TernaryExpr{Cond: cond, Then: then, Else: els}, nil

	case OpPipe:
		subject, err := DecodeExpr(r.Left)
		if err != nil {
			return nil, err
		}
		right, ok := r.Right.([]any)
		if !ok {
			right = []any{r.Right}
		}
		me := &MatchExpr{Op: r.Op, Subject: subject}
		if len(right) == 0 {
			return me, nil
		}
		if me.Matcher, err = DecodeExpr(right[0]); err != nil {
			return nil, err
		}
		for _, a := range right[1:] {
			e, err := DecodeExpr(a)
			if err != nil {
				return nil, err
			}
			me.Args = append(me.Args, e)
		}
		return me, nil

	case OpMatch, OpMatchMut:
		subject, err := DecodeExpr(r.Left)
		if err != nil {
			return nil, err
		}
		matcher, err := DecodeExpr(r.Right)
		if err != nil {
			return nil, err
		}
		me := &MatchExpr{Op: r.Op, Subject: subject, Matcher: matcher}
		for _, a := range r.Args {
			e, err := DecodeExpr(a)
			if err != nil {
				return nil, err
			}
			me.Args = append(me.Args, e)
		}
		return me, nil
	}

	left, err := DecodeExpr(r.Left)
	if err != nil {
		return nil, err
	}
	right, err := DecodeExpr(r.Right)
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: r.Op, Left: left, Right: right}, nil
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s := ToString(v); s != "" {
			return s
		}
	}
	return ""
}
