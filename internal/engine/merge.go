package engine

import (
	"sort"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// MergeRecords folds same-entity records into one normalized entity. Records
// are visited in provider-priority order for the given capability: the first
// provider supplying a non-empty value for a scalar attribute wins it, and no
// later provider may overwrite it. Map-valued attributes (statistics,
// source_ids, venue, coach) are unioned instead: keys absent from the target
// are copied in, existing keys are left untouched.
func (r *Registry) MergeRecords(capability string, records []models.RawRecord) models.MergedEntity {
	if len(records) == 0 {
		return nil
	}

	ordered := make([]models.RawRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return r.PriorityIndex(capability, ordered[i].Source) < r.PriorityIndex(capability, ordered[j].Source)
	})

	merged := models.MergedEntity{}
	for _, rec := range ordered {
		mergeFields(merged, rec.Fields)
	}
	return merged
}

func mergeFields(target models.MergedEntity, fields map[string]any) {
	for key, value := range fields {
		if isEmpty(value) {
			continue
		}

		existing, ok := target[key]
		if !ok || isEmpty(existing) {
			target[key] = cloneValue(value)
			continue
		}

		// Existing scalar wins. Maps union missing keys.
		switch src := value.(type) {
		case map[string]any:
			if dst, ok := existing.(map[string]any); ok {
				for k, v := range src {
					if _, taken := dst[k]; !taken {
						dst[k] = cloneValue(v)
					}
				}
			}
		case map[string]string:
			if dst, ok := existing.(map[string]string); ok {
				for k, v := range src {
					if _, taken := dst[k]; !taken {
						dst[k] = v
					}
				}
			}
		case map[string]float64:
			if dst, ok := existing.(map[string]float64); ok {
				for k, v := range src {
					if _, taken := dst[k]; !taken {
						dst[k] = v
					}
				}
			}
		}
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case map[string]string:
		return len(val) == 0
	case map[string]float64:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}

func cloneEntity(m models.MergedEntity) models.MergedEntity {
	if m == nil {
		return nil
	}
	out := make(models.MergedEntity, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies maps so the merged entity never aliases a provider record.
func cloneValue(v any) any {
	switch src := v.(type) {
	case map[string]any:
		dst := make(map[string]any, len(src))
		for k, val := range src {
			dst[k] = cloneValue(val)
		}
		return dst
	case map[string]string:
		dst := make(map[string]string, len(src))
		for k, val := range src {
			dst[k] = val
		}
		return dst
	case map[string]float64:
		dst := make(map[string]float64, len(src))
		for k, val := range src {
			dst[k] = val
		}
		return dst
	case []any:
		dst := make([]any, len(src))
		copy(dst, src)
		return dst
	case []string:
		dst := make([]string, len(src))
		copy(dst, src)
		return dst
	}
	return v
}
