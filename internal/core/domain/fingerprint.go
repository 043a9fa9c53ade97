package domain

import (
	"fmt"
	"strings"
)

// FingerprintAlgorithm tags every fingerprint produced by the current hashing scheme.
// Changing the scheme changes the tag, so entries written by an older scheme never match.
const FingerprintAlgorithm = "xxh64"

// Fingerprint is the content digest of an artifact in "<algorithm>:<hex>" form.
type Fingerprint string

// NewFingerprint formats a 64-bit digest under the current algorithm tag.
func NewFingerprint(sum uint64) Fingerprint {
	return Fingerprint(fmt.Sprintf("%s:%016x", FingerprintAlgorithm, sum))
}

// Algorithm returns the algorithm tag, or an empty string for untagged values.
func (f Fingerprint) Algorithm() string {
	algo, _, ok := strings.Cut(string(f), ":")
	if !ok {
		return ""
	}
	return algo
}

// Current reports whether the fingerprint was produced by the current algorithm.
func (f Fingerprint) Current() bool {
	return f.Algorithm() == FingerprintAlgorithm
}

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return string(f)
}
