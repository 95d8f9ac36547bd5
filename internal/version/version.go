package version

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a raw module version string as it appeared in its source file.
// Comparisons ignore a leading "v" and follow semver ordering (including
// pre-release and pseudo-version rules) whenever both sides parse as semver.
type Version string

// Highest sorts after every real version. Replace targets naming a local
// directory and versionless overrides carry it.
const Highest Version = "(highest)"

func (v Version) String() string {
	return string(v)
}

// Trimmed returns the version without its leading "v". Checksum entries are
// keyed by this form.
func (v Version) Trimmed() string {
	return strings.TrimPrefix(string(v), "v")
}

func (v Version) canonical() string {
	return "v" + v.Trimmed()
}

// Epoch returns the major-version epoch ("v1", "v2", ...) used when
// classifying requirement conflicts.
func (v Version) Epoch() string {
	if c := v.canonical(); semver.IsValid(c) {
		return semver.Major(c)
	}
	s := v.Trimmed()
	if i := strings.IndexAny(s, ".-+"); i >= 0 {
		s = s[:i]
	}
	return "v" + s
}

// Compare orders two versions. Returns -1, 0 or 1.
func Compare(a, b Version) int {
	if a == Highest || b == Highest {
		switch {
		case a == b:
			return 0
		case a == Highest:
			return 1
		default:
			return -1
		}
	}
	ca, cb := a.canonical(), b.canonical()
	if semver.IsValid(ca) && semver.IsValid(cb) {
		return semver.Compare(ca, cb)
	}
	return compareRelaxed(a.Trimmed(), b.Trimmed())
}

// Max returns the higher of two versions, preferring a when equal.
func Max(a, b Version) Version {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// compareRelaxed compares dot-separated version parts numerically where both
// sides are integers and lexically otherwise. Missing parts count as zero.
// This covers the non-semver versions that show up in older manifests.
func compareRelaxed(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	n := len(aParts)
	if len(bParts) > n {
		n = len(bParts)
	}

	for i := 0; i < n; i++ {
		ap, bp := "0", "0"
		if i < len(aParts) {
			ap = aParts[i]
		}
		if i < len(bParts) {
			bp = bParts[i]
		}

		ai, aErr := strconv.Atoi(ap)
		bi, bErr := strconv.Atoi(bp)
		if aErr == nil && bErr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(ap, bp); c != 0 {
			return c
		}
	}
	return 0
}
