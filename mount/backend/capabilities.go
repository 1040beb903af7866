package backend

import "slices"

// BackendCapability represents a capability that a backend can provide
type BackendCapability string

const (
	// Stores opaque file content addressed by ContentKey
	CapabilityContent BackendCapability = "content"
	// Older versions can be retained next to the current one
	CapabilityVersioning BackendCapability = "versioning"
	// Content survives a process restart
	CapabilityPersistent BackendCapability = "persistent"
	// Reads are streamed instead of buffered in memory
	CapabilityStreaming BackendCapability = "streaming"
)

// BackendCapabilities describes what a backend supports
type BackendCapabilities struct {
	Capabilities  []BackendCapability `json:"capabilities"`
	MaxObjectSize int64               `json:"max_object_size"`
}

// Contains checks if a capability is supported
func (bc *BackendCapabilities) Contains(capability BackendCapability) bool {
	return slices.Contains(bc.Capabilities, capability)
}

// Strings returns the capability names.
func (bc *BackendCapabilities) Strings() []string {
	result := make([]string, 0, len(bc.Capabilities))
	for _, capability := range bc.Capabilities {
		result = append(result, string(capability))
	}
	return result
}
