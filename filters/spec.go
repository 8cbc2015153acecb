// Package filters turns list-endpoint query strings into typed query
// specifications that repositories apply to GORM statements.
package filters

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind tags a predicate variant.
type Kind int

const (
	KindEquality Kind = iota
	KindRange
	KindSet
	KindSubstring
)

// Predicate is one condition of a WHERE clause. Columns always come from the
// constants in this package, never from user input.
type Predicate interface {
	Kind() Kind
	Column() string
	Expression() clause.Expression
}

// Equality matches column = value.
type Equality struct {
	Field string
	Value any
}

func (p Equality) Kind() Kind     { return KindEquality }
func (p Equality) Column() string { return p.Field }
func (p Equality) Expression() clause.Expression {
	return clause.Eq{Column: clause.Column{Name: p.Field}, Value: p.Value}
}

// Range matches min <= column <= max; a nil bound is open. At least one
// bound must be set.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

func (p Range) Kind() Kind     { return KindRange }
func (p Range) Column() string { return p.Field }
func (p Range) Expression() clause.Expression {
	col := clause.Column{Name: p.Field}
	var exprs []clause.Expression
	if p.Min != nil {
		exprs = append(exprs, clause.Gte{Column: col, Value: *p.Min})
	}
	if p.Max != nil {
		exprs = append(exprs, clause.Lte{Column: col, Value: *p.Max})
	}
	return clause.And(exprs...)
}

// SetMembership matches column IN (values).
type SetMembership struct {
	Field  string
	Values []string
}

func (p SetMembership) Kind() Kind     { return KindSet }
func (p SetMembership) Column() string { return p.Field }
func (p SetMembership) Expression() clause.Expression {
	values := make([]any, len(p.Values))
	for i, v := range p.Values {
		values[i] = v
	}
	return clause.IN{Column: clause.Column{Name: p.Field}, Values: values}
}

// Substring matches column LIKE %value%.
type Substring struct {
	Field string
	Value string
}

func (p Substring) Kind() Kind     { return KindSubstring }
func (p Substring) Column() string { return p.Field }
func (p Substring) Expression() clause.Expression {
	return clause.Like{Column: clause.Column{Name: p.Field}, Value: "%" + p.Value + "%"}
}

// Direction of an ORDER BY.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the ORDER BY of a list query.
type Sort struct {
	Column    string
	Direction Direction
}

// Spec is a complete list query: predicates, ordering and page window.
type Spec struct {
	Predicates []Predicate
	Sort       Sort
	Page       Page
	// Params keeps the accepted query parameters so links can echo them.
	Params map[string]string
}

// Add appends predicates to the spec.
func (s *Spec) Add(p ...Predicate) {
	s.Predicates = append(s.Predicates, p...)
}

// Where applies the predicates only; used for counting.
func (s *Spec) Where(db *gorm.DB) *gorm.DB {
	for _, p := range s.Predicates {
		db = db.Where(p.Expression())
	}
	return db
}

// Apply applies predicates, ordering and the page window.
func (s *Spec) Apply(db *gorm.DB) *gorm.DB {
	db = s.Where(db)
	if s.Sort.Column != "" {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: s.Sort.Column},
			Desc:   s.Sort.Direction == Desc,
		})
	}
	return db.Limit(s.Page.Limit).Offset(s.Page.Offset())
}

func (s *Spec) setParam(key, value string) {
	if s.Params == nil {
		s.Params = make(map[string]string)
	}
	s.Params[key] = value
}
