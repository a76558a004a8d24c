package newver

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// versionPattern accepts MAJOR.MINOR.PATCH with an optional fourth revision
// segment and a single -SUFFIX. A leading "v" is tolerated.
var versionPattern = regexp.MustCompile(`(?i)^v?\d+\.\d+\.\d+(?:\.\d+)?(?:-[0-9a-z][0-9a-z.]*)?$`)

// ParseVersion validates a version argument and returns it without its
// leading "v".
func ParseVersion(version string) (string, error) {
	version = strings.TrimSpace(version)
	if !versionPattern.MatchString(version) {
		return "", &DetailError{
			Type:    "invalid version",
			Message: fmt.Sprintf("%q is not a valid version, expected something like 1.2.3", version),
			Hint:    "see https://semver.org for the version format",
			Cause:   ErrInvalidVersion,
		}
	}
	return normalizeVersion(version), nil
}

// normalizeVersion strips surrounding whitespace and a single leading "v" or "V".
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "v") || strings.HasPrefix(v, "V") {
		return v[1:]
	}
	return v
}

// splitSuffix splits a version on its first "-" into the numeric part and
// the suffix. The suffix is empty when there is none.
func splitSuffix(v string) (numeric, suffix string) {
	numeric, suffix, _ = strings.Cut(v, "-")
	return numeric, suffix
}

// majorOf returns the integer value of the first segment of v, or 0 when it
// is not numeric.
func majorOf(v string) int {
	numeric, _ := splitSuffix(normalizeVersion(v))
	first, _, _ := strings.Cut(numeric, ".")
	n, err := strconv.Atoi(first)
	if err != nil {
		return 0
	}
	return n
}

// CompareVersions compares two dot-separated, suffix-free versions segment by
// segment. The shorter version is padded with "0" segments, so "1.2" equals
// "1.2.0". Segments made only of digits compare numerically, whatever their
// length; any other pair falls back to a collated string comparison.
func CompareVersions(a, b string) Ordering {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for len(as) < len(bs) {
		as = append(as, "0")
	}
	for len(bs) < len(as) {
		bs = append(bs, "0")
	}

	for i := range as {
		if isDigits(as[i]) && isDigits(bs[i]) {
			if c := compareDigits(as[i], bs[i]); c != Equal {
				return c
			}
			continue
		}
		if c := collate.New(language.Und).CompareString(as[i], bs[i]); c != 0 {
			return Ordering(c)
		}
	}
	return Equal
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// compareDigits compares two decimal numbers of any size.
func compareDigits(a, b string) Ordering {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return Ordering(c)
	}
	return Ordering(strings.Compare(a, b))
}
