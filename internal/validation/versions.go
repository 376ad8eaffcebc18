package validation

import (
	"fmt"
	"time"
)

// UnstableVersion is always accepted alongside the dated releases.
const UnstableVersion = "unstable"

// quarterVersion formats the release that opens the given quarter (1-4).
func quarterVersion(year, quarter int) string {
	return fmt.Sprintf("%d-%02d", year, quarter*3-2)
}

func quarterOf(t time.Time) (int, int) {
	t = t.UTC()
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// CurrentAPIVersion returns the quarterly release in effect at now.
func CurrentAPIVersion(now time.Time) string {
	year, quarter := quarterOf(now)
	return quarterVersion(year, quarter)
}

// SupportedAPIVersions lists, oldest first, the three previous quarterly
// releases, the current one, the next one and "unstable".
func SupportedAPIVersions(now time.Time) []string {
	year, quarter := quarterOf(now)

	versions := make([]string, 0, 6)
	for back := 3; back >= 1; back-- {
		y, q := year, quarter-back
		for q < 1 {
			q += 4
			y--
		}
		versions = append(versions, quarterVersion(y, q))
	}

	versions = append(versions, quarterVersion(year, quarter))

	if quarter == 4 {
		versions = append(versions, quarterVersion(year+1, 1))
	} else {
		versions = append(versions, quarterVersion(year, quarter+1))
	}

	return append(versions, UnstableVersion)
}
