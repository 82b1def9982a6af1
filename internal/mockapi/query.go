package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type sortKey struct {
	field string
	desc  bool
}

type populate struct {
	Path   string `json:"path"`
	Select string `json:"select"`
}

// listQuery is the decoded "options" parameter plus page/limit.
type listQuery struct {
	filter   map[string]any
	sort     []sortKey
	populate *populate
	page     int
	limit    int
}

type rawOptions struct {
	Filter     map[string]any  `json:"filter"`
	Sort       json.RawMessage `json:"sort"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	} `json:"pagination"`
	PopulateOptions *populate `json:"populateOptions"`
}

// parseListQuery reads options, page and limit. Plain page/limit query
// parameters win over options.pagination.
func parseListQuery(q url.Values) (listQuery, error) {
	lq := listQuery{page: defaultPage, limit: defaultLimit}
	if raw := q.Get("options"); raw != "" {
		var opts rawOptions
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return lq, fmt.Errorf("invalid options: %w", err)
		}
		lq.filter = opts.Filter
		lq.populate = opts.PopulateOptions
		keys, err := parseSort(opts.Sort)
		if err != nil {
			return lq, err
		}
		lq.sort = keys
		if p := opts.Pagination; p != nil {
			if p.Page > 0 {
				lq.page = p.Page
			}
			if p.Limit > 0 {
				lq.limit = p.Limit
			}
		}
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		lq.page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		lq.limit = v
	}
	if lq.limit > maxLimit {
		lq.limit = maxLimit
	}
	return lq, nil
}

// parseSort walks the sort object token by token to keep key order.
func parseSort(raw json.RawMessage) ([]sortKey, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("invalid sort: expected object")
	}
	var keys []sortKey
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
		field, _ := tok.(string)
		var dir any
		if err := dec.Decode(&dir); err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
		keys = append(keys, sortKey{field: field, desc: isDescending(dir)})
	}
	return keys, nil
}

func isDescending(dir any) bool {
	switch v := dir.(type) {
	case float64:
		return v < 0
	case string:
		return strings.EqualFold(v, "desc") || v == "-1"
	}
	return false
}

// filterRecords keeps records matching every filter key.
func filterRecords(records []Record, filter map[string]any) ([]Record, error) {
	if len(filter) == 0 {
		return records, nil
	}
	out := records[:0:0]
	for _, rec := range records {
		ok, err := matches(rec, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(rec Record, filter map[string]any) (bool, error) {
	for field, cond := range filter {
		value := refID(rec[field])
		ops, isOps := cond.(map[string]any)
		if !isOps || !hasOperator(ops) {
			if !equal(value, cond) {
				return false, nil
			}
			continue
		}
		ok, err := matchOperators(value, ops)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func hasOperator(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOperators(value any, ops map[string]any) (bool, error) {
	for op, arg := range ops {
		switch op {
		case "$options":
		case "$regex":
			pattern, _ := arg.(string)
			if flags, _ := ops["$options"].(string); strings.Contains(flags, "i") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, fmt.Errorf("invalid $regex: %w", err)
			}
			s, ok := value.(string)
			if !ok || !re.MatchString(s) {
				return false, nil
			}
		case "$eq":
			if !equal(value, arg) {
				return false, nil
			}
		case "$ne":
			if equal(value, arg) {
				return false, nil
			}
		case "$in":
			list, _ := arg.([]any)
			found := false
			for _, candidate := range list {
				if equal(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case "$gt", "$gte", "$lt", "$lte":
			c, ok := compare(value, arg)
			if !ok {
				return false, nil
			}
			if (op == "$gt" && c <= 0) || (op == "$gte" && c < 0) || (op == "$lt" && c >= 0) || (op == "$lte" && c > 0) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %s", op)
		}
	}
	return true, nil
}

// refID collapses a populated reference to its id so filters compare ids.
func refID(v any) any {
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["_id"]; ok {
			return id
		}
	}
	return v
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

// compare orders numbers numerically and strings lexically (RFC 3339
// timestamps sort correctly that way).
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// sortRecords orders by keys; records missing a key sort last.
func sortRecords(records []Record, keys []sortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			a, aok := records[i][k.field]
			b, bok := records[j][k.field]
			if !aok || !bok {
				if aok != bok {
					return aok
				}
				continue
			}
			c, ok := compare(refID(a), refID(b))
			if !ok || c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// paginate slices one page and reports the page metadata.
func paginate(records []Record, page, limit int) ([]Record, pageInfo) {
	total := len(records)
	info := pageInfo{
		Total:      total,
		Page:       page,
		Limit:      limit,
	}
	if limit > 0 {
		info.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	if page < 1 || limit < 1 || page-1 > total/limit {
		return []Record{}, info
	}
	start := (page - 1) * limit
	if start >= total {
		return []Record{}, info
	}
	end := start + limit
	if end > total {
		end = total
	}
	return records[start:end], info
}

type pageInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// selectFields keeps _id plus the space separated fields in sel.
func selectFields(rec Record, sel string) Record {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return rec
	}
	out := Record{"_id": rec["_id"]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}
