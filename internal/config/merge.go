package config

// MergeLocal merges a scan-root override into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global Config, local *LocalConfig) Config {
	if local == nil {
		return global
	}

	merged := global
	if local.MaxDepth != nil {
		merged.MaxDepth = *local.MaxDepth
	}
	if local.IncludeHidden != nil {
		merged.IncludeHidden = *local.IncludeHidden
	}
	if len(local.SkipDirs) > 0 {
		merged.SkipDirs = appendUnique(global.SkipDirs, local.SkipDirs)
	}
	return merged
}

// appendUnique appends items from extra to base, skipping duplicates.
// Returns a new slice (never mutates base).
func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}

	result := make([]string, len(base))
	copy(result, base)

	for _, v := range extra {
		if !seen[v] {
			result = append(result, v)
			seen[v] = true
		}
	}

	return result
}
