package mockjira

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

// itemFields are tried in order when a route names no items field.
var itemFields = []string{"issues", "values", "items"}

// decodeForPagination parses JSON and returns the payload, its items and whether the top level was an array.
func decodeForPagination(raw []byte, itemsField string) (payload any, items []any, isArray bool, err error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err = dec.Decode(&payload); err != nil {
		return nil, nil, false, err
	}

	switch v := payload.(type) {
	case []any:
		return payload, v, true, nil
	case map[string]any:
		field := itemsField
		if strings.TrimSpace(field) == "" {
			field = detectItemsField(v)
			if field == "" {
				return payload, nil, false, errors.New("itemsField not found; set route.itemsField")
			}
		}
		arr, ok := v[field].([]any)
		if !ok {
			return payload, nil, false, fmt.Errorf("itemsField %q is not an array", field)
		}
		return payload, arr, false, nil
	default:
		return payload, nil, false, errors.New("unsupported JSON shape")
	}
}

// resolveReqPaging extracts start and limit from the query.
func resolveReqPaging(r *http.Request, p Paginate) (start, limit int) {
	start, limit = p.DefaultStart, p.DefaultLimit
	if limit <= 0 {
		limit = 50
	}

	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get(p.ReqStart)); err == nil && n >= 0 {
		start = n
	}
	if n, err := strconv.Atoi(q.Get(p.ReqLimit)); err == nil && n > 0 {
		limit = n
	}
	return start, limit
}

// buildPaginatedPage produces a response with start/limit/total injected and items sliced.
func buildPaginatedPage(payload any, items []any, isArray bool, itemsField string, p Paginate, start, limit int) (map[string]any, error) {
	total := len(items)
	start = min(max(start, 0), total)
	end := min(start+max(limit, 1), total)

	resp := map[string]any{
		p.StartField: start,
		p.LimitField: limit,
		p.TotalField: total,
	}

	if isArray {
		resp["values"] = items[start:end]
		return resp, nil
	}

	obj, _ := payload.(map[string]any)
	out := make(map[string]any, len(obj)+3)
	maps.Copy(out, obj)

	field := itemsField
	if field == "" {
		field = detectItemsField(out)
	}
	if field == "" {
		return nil, errors.New("cannot determine items field to replace")
	}

	out[field] = items[start:end]
	maps.Copy(out, resp)
	return out, nil
}

// detectItemsField returns the first known items field present.
func detectItemsField(m map[string]any) string {
	for _, k := range itemFields {
		if _, ok := m[k].([]any); ok {
			return k
		}
	}
	return ""
}
