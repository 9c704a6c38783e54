package query

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
	"github.com/expr-lang/expr/vm/runtime"

	"restotrack/shared/go/models"
)

// ErrInvalidExpression wraps compile and evaluation failures of a Where clause.
var ErrInvalidExpression = errors.New("query: invalid expression")

const maxCachedPrograms = 128

const orderedFunc = "compareOrdered"

// orderedPatcher rewrites <, <=, > and >= into compareOrdered calls so an
// absent optional value never matches instead of failing the whole query.
type orderedPatcher struct{}

func (orderedPatcher) Visit(node *ast.Node) {
	n, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}
	switch n.Operator {
	case "<", "<=", ">", ">=":
		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: orderedFunc},
			Arguments: []ast.Node{&ast.StringNode{Value: n.Operator}, n.Left, n.Right},
		})
	}
}

// compareOrdered is false when either operand is nil. Mismatched types are
// still an error.
func compareOrdered(params ...any) (result any, err error) {
	if len(params) != 3 {
		return nil, fmt.Errorf("%s: want 3 arguments, got %d", orderedFunc, len(params))
	}
	op, _ := params[0].(string)
	a, b := params[1], params[2]
	if a == nil || b == nil {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	switch op {
	case "<":
		return runtime.Less(a, b), nil
	case "<=":
		return runtime.LessOrEqual(a, b), nil
	case ">":
		return runtime.More(a, b), nil
	case ">=":
		return runtime.MoreOrEqual(a, b), nil
	}
	return nil, fmt.Errorf("%s: unsupported operator %q", orderedFunc, op)
}

// Predicate is a compiled Where expression.
type Predicate struct {
	source  string
	program *vm.Program
}

type programCache struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

var programs = &programCache{programs: make(map[string]*vm.Program)}

func (c *programCache) get(source string) (*vm.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.programs[source]
	return p, ok
}

func (c *programCache) set(source string, p *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.programs) >= maxCachedPrograms {
		c.programs = make(map[string]*vm.Program)
	}
	c.programs[source] = p
}

// Compile parses expression into a Predicate. Expressions see the variables
// listed in Env and must produce a boolean. Ordering comparisons against an
// absent value are false, so "rating >= 4" skips unrated restaurants.
func Compile(expression string) (*Predicate, error) {
	source := strings.TrimSpace(expression)
	if source == "" {
		return nil, fmt.Errorf("%w: expression must not be empty", ErrInvalidExpression)
	}

	if program, ok := programs.get(source); ok {
		return &Predicate{source: source, program: program}, nil
	}

	program, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.Function(orderedFunc, compareOrdered, new(func(string, any, any) bool)),
		expr.Patch(orderedPatcher{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	programs.set(source, program)

	return &Predicate{source: source, program: program}, nil
}

// String returns the expression source.
func (p *Predicate) String() string { return p.source }

// Match evaluates the predicate against r.
func (p *Predicate) Match(r models.Restaurant) (bool, error) {
	out, err := expr.Run(p.program, Env(r))
	if err != nil {
		return false, fmt.Errorf("%w: %q on %s: %v", ErrInvalidExpression, p.source, r.ID, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %T, want bool", ErrInvalidExpression, p.source, out)
	}
	return matched, nil
}

// Env exposes r to expressions. Absent optional values are nil.
func Env(r models.Restaurant) map[string]any {
	env := map[string]any{
		"id":         r.ID,
		"name":       r.Name,
		"address":    r.Location.Address,
		"lat":        r.Location.Coordinates.Lat,
		"lng":        r.Location.Coordinates.Lng,
		"foodGenre":  r.FoodGenre,
		"notes":      r.Notes,
		"links":      append([]string{}, r.Links...),
		"createdAt":  r.CreatedAt,
		"updatedAt":  r.UpdatedAt,
		"priceRange": nil,
		"rating":     nil,
		"priceMin":   nil,
		"priceMax":   nil,
	}
	if r.PriceRange != nil {
		env["priceRange"] = *r.PriceRange
	}
	if r.Rating != nil {
		env["rating"] = *r.Rating
	}
	if r.PriceRangeText != nil {
		env["priceMin"] = r.PriceRangeText.Min
		env["priceMax"] = r.PriceRangeText.Max
	}
	return env
}

// Run applies the field predicates of f and then f.Where, if set.
func Run(items []models.Restaurant, f models.Filter) ([]models.Restaurant, error) {
	if strings.TrimSpace(f.Where) == "" {
		return Apply(items, f), nil
	}

	predicate, err := Compile(f.Where)
	if err != nil {
		return nil, err
	}

	out := make([]models.Restaurant, 0, len(items))
	for _, item := range items {
		if !Matches(item, f) {
			continue
		}
		ok, err := predicate.Match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}
