package model

import (
	"sort"
	"strings"
)

// KeyLevels is the normalized support/resistance shape consumed by the
// signal synthesizer. External callers feed levels through
// NormalizeLevels exactly once; detectors never see the raw map.
type KeyLevels struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

var supportKeys = []string{"support", "supports", "s", "demand", "demand_zones"}
var resistanceKeys = []string{"resistance", "resistances", "r", "supply", "supply_zones"}

// NormalizeLevels maps the loosely-keyed level objects used by upstream
// feeds ("support"/"supports"/"S"/"demand" all mean the same thing) into
// one KeyLevels value. Non-numeric entries are dropped, duplicates
// collapse, output is ascending.
func NormalizeLevels(raw map[string]interface{}) KeyLevels {
	return KeyLevels{
		Support:    collectLevels(raw, supportKeys),
		Resistance: collectLevels(raw, resistanceKeys),
	}
}

func collectLevels(raw map[string]interface{}, keys []string) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, key := range keys {
		v, ok := lookupFold(raw, key)
		if !ok {
			continue
		}
		for _, f := range toFloats(v) {
			if !finite(f) || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Float64s(out)
	return out
}

func lookupFold(raw map[string]interface{}, key string) (interface{}, bool) {
	for k, v := range raw {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func toFloats(v interface{}) []float64 {
	switch t := v.(type) {
	case float64:
		return []float64{t}
	case int:
		return []float64{float64(t)}
	case []float64:
		return t
	case []interface{}:
		var out []float64
		for _, e := range t {
			out = append(out, toFloats(e)...)
		}
		return out
	case map[string]interface{}:
		// Zone objects carry a price field.
		if p, ok := lookupFold(t, "price"); ok {
			return toFloats(p)
		}
		if p, ok := lookupFold(t, "level"); ok {
			return toFloats(p)
		}
	}
	return nil
}
