package viewstate

import (
	"encoding/json"

	"github.com/spf13/cast"

	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// Decode parses a stored view state leniently. Fields with the wrong shape
// are dropped, numeric strings are accepted for sizes, and non-positive
// sizes are discarded. Unparseable input yields the zero state.
func Decode(data []byte) vtable.ViewState {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return vtable.ViewState{}
	}

	var vs vtable.ViewState
	if col := stringField(raw["sort_column"]); col != "" {
		if d := vtable.ParseDirection(stringField(raw["sort_direction"])); d != vtable.SortNone {
			vs.SortColumn = col
			vs.SortDirection = d.String()
		}
	}
	vs.SearchTerm = stringField(raw["search_term"])

	if list, err := cast.ToSliceE(raw["pinned_columns"]); err == nil {
		for _, item := range list {
			if name := stringField(item); name != "" {
				vs.PinnedColumns = append(vs.PinnedColumns, name)
			}
		}
	}

	vs.ColumnWidths = sizeMap(raw["column_widths"])
	vs.RowHeights = sizeMap(raw["row_heights"])
	return vs
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func sizeMap(v any) map[string]int {
	if v == nil {
		return nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, raw := range m {
		n, err := cast.ToIntE(raw)
		if err != nil || n <= 0 {
			continue
		}
		out[k] = n
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
