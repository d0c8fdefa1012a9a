package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

type SortDataInput struct {
	Data          string `json:"data" jsonschema_description:"Data to sort: a JSON array, comma-separated values, or newline-separated values."`
	Order         string `json:"order,omitempty" jsonschema:"enum=asc,enum=desc" jsonschema_description:"Sort order: 'asc' (default) or 'desc'."`
	Numeric       bool   `json:"numeric,omitempty" jsonschema_description:"Sort as numbers instead of text (default false)."`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema_description:"Case-sensitive text sorting (default false)."`
}

// SortDataTool returns sort_data. Numeric results are rendered as a JSON
// array and text results as a comma-separated list.
func SortDataTool() ToolDefinition {
	return NewTool(SortDataName, "Sort data in ascending or descending order. Supports numbers, text, JSON arrays, and comma or newline separated values.",
		func(_ context.Context, in SortDataInput) (string, error) {
			return sortData(in), nil
		})
}

func sortData(in SortDataInput) string {
	if strings.TrimSpace(in.Data) == "" {
		return "Error: No data provided to sort"
	}
	items, errMsg := splitData(in.Data)
	if errMsg != "" {
		return errMsg
	}
	if len(items) == 0 {
		return "Error: No data to sort"
	}
	desc := strings.EqualFold(in.Order, "desc")

	if in.Numeric {
		nums := make([]float64, 0, len(items))
		for _, it := range items {
			n, ok := toNumber(it)
			if !ok {
				return "Error: Could not convert data to numbers for numeric sorting"
			}
			nums = append(nums, n)
		}
		sort.SliceStable(nums, func(i, j int) bool {
			if desc {
				return nums[i] > nums[j]
			}
			return nums[i] < nums[j]
		})
		b, _ := json.Marshal(nums)
		return string(b)
	}

	strs := make([]string, len(items))
	for i, it := range items {
		strs[i] = toText(it)
	}
	key := func(s string) string {
		if in.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	sort.SliceStable(strs, func(i, j int) bool {
		if desc {
			return key(strs[i]) > key(strs[j])
		}
		return key(strs[i]) < key(strs[j])
	})
	return strings.Join(strs, ", ")
}

// splitData accepts a JSON array, or falls back to comma and then newline
// separated text.
func splitData(data string) ([]any, string) {
	var parsed any
	if err := json.Unmarshal([]byte(data), &parsed); err == nil {
		list, ok := parsed.([]any)
		if !ok {
			return nil, "Error: JSON data must be a list/array"
		}
		return list, ""
	}

	var items []any
	if strings.Contains(data, ",") {
		for _, p := range strings.Split(data, ",") {
			items = append(items, strings.TrimSpace(p))
		}
		return items, ""
	}
	for _, line := range strings.Split(data, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			items = append(items, s)
		}
	}
	return items, ""
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
