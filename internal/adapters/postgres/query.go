package postgres

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fieldops.service/internal/ports/backend"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

type listStatement struct {
	count     string
	selectSQL string
	args      []any
}

// buildList translates a backend query into a count and a select statement
// sharing the same arguments. Attribute paths use dots for nesting.
func buildList(collection string, q backend.Query) (listStatement, error) {
	args := []any{collection}
	where := []string{"collection = $1"}

	for _, f := range q.Filters {
		if len(f.Values) == 0 {
			return listStatement{}, fmt.Errorf("filter on %q has no values", f.Field)
		}
		expr, system, err := filterExpr(f.Field)
		if err != nil {
			return listStatement{}, err
		}
		placeholders := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			arg, err := filterArg(v, system)
			if err != nil {
				return listStatement{}, fmt.Errorf("filter on %q: %w", f.Field, err)
			}
			args = append(args, arg)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", expr, strings.Join(placeholders, ", ")))
	}

	orders := make([]string, 0, len(q.Orders)+1)
	for _, o := range q.Orders {
		expr, err := orderExpr(o.Field)
		if err != nil {
			return listStatement{}, err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		orders = append(orders, expr+" "+dir)
	}
	// seq breaks ties in the direction of the primary order.
	tieBreak := "seq ASC"
	if len(q.Orders) > 0 && q.Orders[0].Desc {
		tieBreak = "seq DESC"
	}
	orders = append(orders, tieBreak)

	cond := strings.Join(where, " AND ")
	sel := fmt.Sprintf("SELECT id, created_at, updated_at, data FROM documents WHERE %s ORDER BY %s",
		cond, strings.Join(orders, ", "))
	if q.Limit > 0 {
		sel += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		sel += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	return listStatement{
		count:     "SELECT count(*) FROM documents WHERE " + cond,
		selectSQL: sel,
		args:      args,
	}, nil
}

func systemColumn(field string) (string, bool) {
	switch field {
	case backend.FieldID:
		return "id", true
	case backend.FieldCreatedAt:
		return "created_at", true
	case backend.FieldUpdatedAt:
		return "updated_at", true
	}
	return "", false
}

func jsonPath(field string) (string, error) {
	if !fieldPattern.MatchString(field) {
		return "", fmt.Errorf("invalid attribute %q", field)
	}
	return "'{" + strings.ReplaceAll(field, ".", ",") + "}'", nil
}

// filterExpr compares attributes as text so one placeholder type fits every
// JSON scalar.
func filterExpr(field string) (string, bool, error) {
	if col, ok := systemColumn(field); ok {
		return col, true, nil
	}
	path, err := jsonPath(field)
	if err != nil {
		return "", false, err
	}
	return "data #>> " + path, false, nil
}

// orderExpr orders attributes as jsonb so numbers sort numerically.
func orderExpr(field string) (string, error) {
	if col, ok := systemColumn(field); ok {
		return col, nil
	}
	path, err := jsonPath(field)
	if err != nil {
		return "", err
	}
	return "data #> " + path, nil
}

// filterArg renders a filter value the way the #>> operator renders the
// stored attribute. System timestamp columns take a time value.
func filterArg(v any, system bool) (any, error) {
	if system {
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return parsed.UTC(), nil
			}
			return t, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return string(b), nil
}
