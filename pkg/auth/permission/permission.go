package permission

import "github.com/ssshoffice/office-in-go/pkg/identity"

// Permission codes. Each is an opaque 8-character capability identifier.
const (
	// SuperUser bypasses every other permission check.
	SuperUser = "S0000001"
	// CanUseOffice is the baseline code required to be considered logged in
	// at all; without it no finer-grained check can pass.
	CanUseOffice = "LOGIN001"

	CanUseWork = "A0000003"
	CanUseAuth = "A0000004"

	ModifyAnotherUser = "M0000001"
	DeleteAnotherUser = "D0000001"
	ReadAnotherUser   = "R0000001"

	ModifyAnotherWork = "M0000003"
	DeleteAnotherWork = "D0000003"
	ReadAnotherWork   = "R0000003"
)

// Satisfies reports whether the identity's code set meets the requirement.
//
//  1. SuperUser passes unconditionally.
//  2. Without CanUseOffice nothing passes.
//  3. A non-empty requirement passes if ANY one required code is held.
//  4. An empty requirement never passes: a route that declares no codes is
//     deliberately deny-by-default rather than open.
//
// The function is pure and safe for concurrent use.
func Satisfies(id *identity.Identity, required ...string) bool {
	if id == nil {
		return false
	}
	if id.HasCode(SuperUser) {
		return true
	}
	if !id.HasCode(CanUseOffice) {
		return false
	}

	for _, code := range required {
		if id.HasCode(code) {
			return true
		}
	}
	return false
}

// Owns reports whether the caller is acting on its own resource. Ownership
// lets a subject act on itself regardless of permission codes.
func Owns(targetID, callerID string) bool {
	return targetID != "" && targetID == callerID
}

// RankAllows reports whether a caller of the given rank may act on records
// belonging to a subject of the target rank. A caller may never reach above
// its own tier.
func RankAllows(targetRank, callerRank int) bool {
	return callerRank >= targetRank
}
