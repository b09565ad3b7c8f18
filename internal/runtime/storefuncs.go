package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/itembank/internal/ontology"
	"github.com/jward/itembank/internal/store"
)

// makeDBQueryFn creates the "db_query" host function: a read-only escape
// hatch for checks the typed host functions do not cover. Queries run on a
// query_only connection, so writes hidden behind WITH are rejected too.
//
// db_query(sql, args...) → [{column: value}]
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}

		trimmed := strings.TrimSpace(strings.ToUpper(sqlStr))
		if !strings.HasPrefix(trimmed, "SELECT") && !strings.HasPrefix(trimmed, "WITH") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		var queryArgs []any
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, fmt.Sprintf("%v", arg))
			}
		}

		var results []object.Object
		err = s.ReadOnly(ctx, func(conn *sql.Conn) error {
			rows, err := conn.QueryContext(ctx, sqlStr, queryArgs...)
			if err != nil {
				return err
			}
			defer rows.Close()

			cols, err := rows.Columns()
			if err != nil {
				return fmt.Errorf("columns: %w", err)
			}
			for rows.Next() {
				values := make([]any, len(cols))
				ptrs := make([]any, len(cols))
				for i := range values {
					ptrs[i] = &values[i]
				}
				if err := rows.Scan(ptrs...); err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				row := make(map[string]object.Object, len(cols))
				for i, col := range cols {
					row[col] = sqlValueToObject(values[i])
				}
				results = append(results, object.NewMap(row))
			}
			return rows.Err()
		})
		if store.IsReadOnlyViolation(err) {
			return object.Errorf("db_query: only SELECT queries are allowed: %v", err)
		}
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		if results == nil {
			results = []object.Object{}
		}
		return object.NewList(results)
	})
}

// sqlValueToObject converts a database value to a Risor object.
func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

// resourcesToList converts resources to a Risor list of {uri, label} maps.
func resourcesToList(rs []ontology.Resource) object.Object {
	results := make([]object.Object, 0, len(rs))
	for _, r := range rs {
		results = append(results, object.NewMap(map[string]object.Object{
			"uri":   object.NewString(r.URI),
			"label": object.NewString(r.Label),
		}))
	}
	return object.NewList(results)
}

func stringsToList(ss []string) object.Object {
	results := make([]object.Object, 0, len(ss))
	for _, s := range ss {
		results = append(results, object.NewString(s))
	}
	return object.NewList(results)
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toBool(obj object.Object) (bool, error) {
	if b, ok := obj.(*object.Bool); ok {
		return b.Value(), nil
	}
	return false, fmt.Errorf("expected bool, got %s", obj.Type())
}

// ToGo converts a script result into plain Go values: maps, slices, strings,
// int64, float64, and bool.
func ToGo(obj object.Object) any {
	switch v := obj.(type) {
	case nil:
		return nil
	case *object.NilType:
		return nil
	case *object.Int:
		return v.Value()
	case *object.Float:
		return v.Value()
	case *object.String:
		return v.Value()
	case *object.Bool:
		return v.Value()
	case *object.List:
		items := v.Value()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = ToGo(item)
		}
		return out
	case *object.Map:
		items := v.Value()
		out := make(map[string]any, len(items))
		for k, item := range items {
			out[k] = ToGo(item)
		}
		return out
	default:
		return obj.Inspect()
	}
}
