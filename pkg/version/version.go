// Package version provides the agent version and firmware version
// parsing and comparison helpers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the agent version.
const Version = "1.0.0"

// Firmware represents a parsed "major.minor.patch" firmware version.
type Firmware struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor.patch" firmware version string. The
// patch component may be omitted.
func Parse(s string) (Firmware, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return Firmware{}, fmt.Errorf("invalid version %q: expected major.minor[.patch]", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Firmware{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Firmware{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	var patch uint64
	if len(parts) == 3 {
		patch, err = strconv.ParseUint(parts[2], 10, 16)
		if err != nil || parts[2] == "" {
			return Firmware{}, fmt.Errorf("invalid version %q: bad patch component", s)
		}
	}

	return Firmware{Major: uint16(major), Minor: uint16(minor), Patch: uint16(patch)}, nil
}

// String returns the version as "major.minor.patch".
func (v Firmware) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 if v is older than, equal to, or newer
// than other.
func (v Firmware) Compare(other Firmware) int {
	switch {
	case v.Major != other.Major:
		return compareUint16(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareUint16(v.Minor, other.Minor)
	default:
		return compareUint16(v.Patch, other.Patch)
	}
}

// Newer returns true if v is strictly newer than other.
func (v Firmware) Newer(other Firmware) bool {
	return v.Compare(other) > 0
}

func compareUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
