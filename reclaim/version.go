package reclaim

// Version information for the epochguard reclamation engine.
const (
	// Version is the current version of the reclamation engine.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the reclamation engine.
type Info struct {
	// Version is the engine version string.
	Version string

	// Algorithm is the reclamation scheme implemented.
	Algorithm string

	// LockFree reports whether any operation can block another. Always
	// false for this engine: the only spins are CAS retries bounded by
	// contention.
	LockFree bool
}

// GetInfo returns information about the reclamation engine.
//
// Example:
//
//	info := reclaim.GetInfo()
//	fmt.Printf("epochguard %s (%s)\n", info.Version, info.Algorithm)
func GetInfo() Info {
	return Info{
		Version:   Version,
		Algorithm: "Epoch-Based Reclamation (two-generation, lazy advance)",
		LockFree:  true,
	}
}
