package domain

import (
	"strings"
)

// tokenizeVersion converts a software train string into comparable numeric
// segments. Network OS versions are not semver: "17.6.3a" tokenizes to
// [17 6 3] (the letter rebuild suffix is ignored), "16.12" pads to
// [16 12 0]. An empty or non-numeric string yields [0].
func tokenizeVersion(v string) []int {
	v = strings.TrimSpace(v)
	if v == "" {
		return []int{0}
	}

	// Keep the leading run of digits and dots only.
	end := 0
	for ; end < len(v); end++ {
		c := v[end]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
	}
	s := strings.Trim(v[:end], ".")
	if s == "" {
		return []int{0}
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n := 0
		for i := 0; i < len(p); i++ {
			n = n*10 + int(p[i]-'0')
		}
		nums = append(nums, n)
	}
	for len(nums) < 3 {
		nums = append(nums, 0)
	}
	return nums
}

// CompareVersions compares two version strings segment-wise, returning
// -1, 0 or 1. Missing segments compare as zero, so "17.5" == "17.5.0".
func CompareVersions(a, b string) int {
	ta := tokenizeVersion(a)
	tb := tokenizeVersion(b)

	n := len(ta)
	if len(tb) > n {
		n = len(tb)
	}
	for i := 0; i < n; i++ {
		var va, vb int
		if i < len(ta) {
			va = ta[i]
		}
		if i < len(tb) {
			vb = tb[i]
		}
		if va < vb {
			return -1
		}
		if va > vb {
			return 1
		}
	}
	return 0
}
