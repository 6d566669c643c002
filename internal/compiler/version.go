package compiler

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/lowir/internal/ir"
)

// SupportedIRVersions is the range of IR schema versions this validator
// understands.
const SupportedIRVersions = ">= 1.0.0, < 2.0.0"

// ErrUnsupportedVersion is returned for units outside SupportedIRVersions.
var ErrUnsupportedVersion = errors.New("unsupported IR version")

var supported = semver.MustParse(ir.IRVersion)

// CheckIRVersion verifies that version is a semver inside
// SupportedIRVersions. An empty version means the current ir.IRVersion.
func CheckIRVersion(version string) error {
	v := supported
	if version != "" {
		parsed, err := semver.NewVersion(version)
		if err != nil {
			return fmt.Errorf("invalid IR version %q: %w", version, err)
		}
		v = parsed
	}
	c, err := semver.NewConstraint(SupportedIRVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, SupportedIRVersions)
	}
	return nil
}
