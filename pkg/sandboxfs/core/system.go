package core

// SystemType is the classification tag a subsystem reports to the engine's
// system registry.
type SystemType int

const (
	// SystemTypeUnknown is the zero value.
	SystemTypeUnknown SystemType = iota
	// SystemTypeFilesystem identifies filesystem backends.
	SystemTypeFilesystem
)

// String returns the registry name of the system type
func (t SystemType) String() string {
	switch t {
	case SystemTypeFilesystem:
		return "Filesystem"
	default:
		return "Unknown"
	}
}

// System is implemented by every subsystem the registry can own.
type System interface {
	SystemType() SystemType
}
