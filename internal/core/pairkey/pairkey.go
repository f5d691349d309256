// Package pairkey contains the pure canonicalization logic for
// conversation pair keys. Canonical ordering is what lets the storage
// layer enforce one conversation per unordered pair of users.
package pairkey

import "strings"

// Canonical orders two identities into the (low, high) pair key.
// The order is a plain byte-wise total order over the identity strings,
// so Canonical(a, b) == Canonical(b, a) for any two identities.
func Canonical(a, b string) (low, high string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}
