package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Options is serialized as JSON into the "options" query parameter. Filter
// values are forwarded verbatim, including Mongo-style operators.
type Options struct {
	Filter          map[string]any `json:"filter,omitempty"`
	Sort            Sort           `json:"sort,omitempty"`
	Pagination      *Pagination    `json:"pagination,omitempty"`
	PopulateOptions *Populate      `json:"populateOptions,omitempty"`
}

// Pagination is the page request nested in Options.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Populate asks the backend to expand a reference field inline.
type Populate struct {
	Path   string `json:"path"`
	Select string `json:"select,omitempty"`
}

// SortField is one key of an ordered sort specification.
type SortField struct {
	Field string
	Desc  bool
}

// Sort keeps field order, which a Go map would lose.
type Sort []SortField

// Asc and Desc build one-key sorts; chain with Then.
func Asc(field string) Sort  { return Sort{{Field: field}} }
func Desc(field string) Sort { return Sort{{Field: field, Desc: true}} }

// Then appends a secondary sort key.
func (s Sort) Then(field string, desc bool) Sort {
	return append(s, SortField{Field: field, Desc: desc})
}

func (s Sort) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		if f.Desc {
			buf.WriteString(":-1")
		} else {
			buf.WriteString(":1")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads {"field": 1|-1|"asc"|"desc", ...} keeping key order.
func (s *Sort) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("resource: sort must be an object")
	}
	var out Sort
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var dir any
		if err := dec.Decode(&dir); err != nil {
			return err
		}
		field := keyTok.(string)
		switch d := dir.(type) {
		case float64:
			out = append(out, SortField{Field: field, Desc: d < 0})
		case string:
			switch strings.ToLower(d) {
			case "asc", "ascending":
				out = append(out, SortField{Field: field})
			case "desc", "descending":
				out = append(out, SortField{Field: field, Desc: true})
			default:
				return fmt.Errorf("resource: invalid sort direction %q for %s", d, field)
			}
		default:
			return fmt.Errorf("resource: invalid sort direction for %s", field)
		}
	}
	*s = out
	return nil
}

// Values encodes the options as a query set. Empty options encode to nil.
func (o Options) Values() (url.Values, error) {
	if len(o.Filter) == 0 && len(o.Sort) == 0 && o.Pagination == nil && o.PopulateOptions == nil {
		return nil, nil
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("resource: encode options: %w", err)
	}
	return url.Values{"options": {string(payload)}}, nil
}

// WithFilter returns a copy of o with key set in the filter.
func (o Options) WithFilter(key string, value any) Options {
	filter := make(map[string]any, len(o.Filter)+1)
	for k, v := range o.Filter {
		filter[k] = v
	}
	filter[key] = value
	o.Filter = filter
	return o
}

// OverlayOptions folds the caller's "options" parameter from params into
// base. Caller filter keys are added unless base sets the same key, a caller
// sort replaces base.Sort, and caller pagination applies when base has none.
// populateOptions always comes from base. Other params pass through.
func OverlayOptions(params url.Values, base Options) (url.Values, error) {
	var caller Options
	if raw := params.Get("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &caller); err != nil {
			return nil, fmt.Errorf("resource: decode options: %w", err)
		}
	}
	merged := base
	if len(caller.Filter) > 0 {
		merged.Filter = make(map[string]any, len(caller.Filter)+len(base.Filter))
		for k, v := range caller.Filter {
			merged.Filter[k] = v
		}
		for k, v := range base.Filter {
			merged.Filter[k] = v
		}
	}
	if len(caller.Sort) > 0 {
		merged.Sort = caller.Sort
	}
	if merged.Pagination == nil {
		merged.Pagination = caller.Pagination
	}
	encoded, err := merged.Values()
	if err != nil {
		return nil, err
	}
	rest := url.Values{}
	for k, vs := range params {
		if k != "options" {
			rest[k] = vs
		}
	}
	return Merge(rest, encoded), nil
}

// Regex builds a case-insensitive $regex filter value.
func Regex(pattern string) map[string]any {
	return map[string]any{"$regex": pattern, "$options": "i"}
}

// Between builds a $gte/$lte range. Nil bounds are omitted.
func Between(min, max any) map[string]any {
	out := map[string]any{}
	if min != nil {
		out["$gte"] = min
	}
	if max != nil {
		out["$lte"] = max
	}
	return out
}

// PageParams builds the plain page/limit query used by /many endpoints.
// Non-positive values are left out so the backend default applies.
func PageParams(page, limit int) url.Values {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// Merge combines query sets; later sets win per key.
func Merge(sets ...url.Values) url.Values {
	out := url.Values{}
	for _, set := range sets {
		for k, vs := range set {
			out[k] = append([]string(nil), vs...)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
