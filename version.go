package treearena

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// APIVersion is this build's capacity-table ABI version: it changes only
// when Slots/ZeroSlot/ZeroBucket/Buckets/MaxIndex's derivation changes in a
// way that would shift which bucket/entry an existing Index decodes to.
// Exposed so an embedder that serializes Index values across processes can
// assert compatibility before trusting them.
const APIVersion = "1.0.0"

// MinCompatibleAPI is the oldest APIVersion this package's Index encoding
// remains compatible with.
const MinCompatibleAPI = "1.0.0"

// CheckAPIVersion parses constraint as a semver constraint (e.g. ">=1.0.0,
// <2.0.0") and reports whether this build's APIVersion satisfies it. This
// lets a long-lived embedder (one that persists Index values and reopens
// them against a later treearena build) fail fast instead of silently
// decoding an Index against a shifted bucket layout.
func CheckAPIVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("treearena: invalid API version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(APIVersion)
	if err != nil {
		// APIVersion is a package-level constant; a parse failure here
		// would be a bug in this file, not caller input.
		panicInvariant(fmt.Sprintf("APIVersion %q does not parse as semver", APIVersion))
	}

	if !c.Check(v) {
		return fmt.Errorf("treearena: build API version %s does not satisfy constraint %q", APIVersion, constraint)
	}

	return nil
}
