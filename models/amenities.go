package models

// AmenityConfig maps amenity keys to whether the offer includes them.
type AmenityConfig map[string]bool

// amenityDefaults is the registry of known amenity and meal-plan keys with
// their code-defined defaults. New keys added here in a later deploy apply
// their default without overwriting a stored choice for an existing key.
var amenityDefaults = AmenityConfig{
	"breakfast":        false,
	"lunch":            false,
	"dinner":           false,
	"airport_pickup":   false,
	"towels":           true,
	"laundry":          false,
	"wifi":             true,
	"sauna":            false,
	"ice_bath":         false,
	"open_mat":         true,
	"private_coaching": false,
	"equipment_rental": false,
}

// KnownAmenityKeys returns the registered amenity keys.
func KnownAmenityKeys() []string {
	keys := make([]string, 0, len(amenityDefaults))
	for k := range amenityDefaults {
		keys = append(keys, k)
	}
	return keys
}

// IsKnownAmenity reports whether key is in the registry.
func IsKnownAmenity(key string) bool {
	_, ok := amenityDefaults[key]
	return ok
}

// ResolveAmenities merges a stored amenity configuration with the registry
// defaults. Stored choices always win; registered keys missing from the
// stored config get their default. Unregistered stored keys are preserved
// so a rollback never loses data.
func ResolveAmenities(stored AmenityConfig) AmenityConfig {
	resolved := make(AmenityConfig, len(amenityDefaults)+len(stored))
	for k, v := range amenityDefaults {
		resolved[k] = v
	}
	for k, v := range stored {
		resolved[k] = v
	}
	return resolved
}
