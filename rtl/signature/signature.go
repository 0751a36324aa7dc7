// Package signature derives hash-table signatures from names.
//
// FNV1a64 and FNV1a64Fold are general purpose. X65599 and X31 are the two
// string hash algorithms of the NT runtime library, computed over UTF-16
// code units. Registry is the leaf hash stored in registry LH subkey lists.
package signature

import (
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/cases"
)

// FNV-1a constants for 64-bit hash.
const (
	fnvBasis64 uint64 = 14695981039346656037
	fnvPrime64 uint64 = 1099511628211
)

const (
	x65599Multiplier   = 65599
	x31Multiplier      = 31
	registryMultiplier = 37
)

// FNV1a64 hashes data with 64-bit FNV-1a.
func FNV1a64(data []byte) uint64 {
	h := fnvBasis64
	for _, c := range data {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// FNV1a64Fold hashes s with 64-bit FNV-1a, lowercasing ASCII as it goes.
// It does not allocate.
func FNV1a64Fold(s string) uint64 {
	h := fnvBasis64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// Fold returns the Unicode case folding of s, the form under which two
// names that differ only by case compare equal.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// FNV1a64Unicode hashes the Unicode case folding of s.
func FNV1a64Unicode(s string) uint64 {
	return FNV1a64([]byte(Fold(s)))
}

// codeUnits calls fn for each UTF-16 code unit of s, upcasing each rune
// first when upcase is set.
func codeUnits(s string, upcase bool, fn func(uint16)) {
	for _, r := range s {
		if upcase {
			r = unicode.ToUpper(r)
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
			fn(uint16(r1))
			fn(uint16(r2))
			continue
		}
		fn(uint16(r))
	}
}

// X65599 hashes s as hash = hash*65599 + unit over its UTF-16 code units.
func X65599(s string, caseInsensitive bool) uint32 {
	var h uint32
	codeUnits(s, caseInsensitive, func(u uint16) {
		h = h*x65599Multiplier + uint32(u)
	})
	return h
}

// X31 hashes s as hash = hash*31 + unit over its UTF-16 code units.
func X31(s string, caseInsensitive bool) uint32 {
	var h uint32
	codeUnits(s, caseInsensitive, func(u uint16) {
		h = h*x31Multiplier + uint32(u)
	})
	return h
}

// Registry computes the registry leaf hash of name: hash = hash*37 +
// toupper(char) for each character.
func Registry(name string) uint32 {
	var h uint32
	for _, r := range name {
		h = h*registryMultiplier + uint32(unicode.ToUpper(r))
	}
	return h
}
