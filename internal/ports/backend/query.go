package backend

import "slices"

type Filter struct {
	Field  string
	Values []any
}

type Order struct {
	Field string
	Desc  bool
}

// Query selects documents of a collection. The zero value matches every
// document in backend order. Builder methods return modified copies.
type Query struct {
	Filters []Filter
	Orders  []Order
	Limit   int
	Offset  int
}

func NewQuery() Query { return Query{} }

// Equal keeps documents whose field equals any of values.
func (q Query) Equal(field string, values ...any) Query {
	q.Filters = append(slices.Clip(q.Filters), Filter{Field: field, Values: values})
	return q
}

func (q Query) OrderAsc(field string) Query {
	q.Orders = append(slices.Clip(q.Orders), Order{Field: field})
	return q
}

func (q Query) OrderDesc(field string) Query {
	q.Orders = append(slices.Clip(q.Orders), Order{Field: field, Desc: true})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

func (q Query) WithOffset(n int) Query {
	q.Offset = n
	return q
}
