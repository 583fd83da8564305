package extract

// NameLookup resolves a registered business name from a tax identifier.
// Implementations may consult a padrón snapshot, a cache, or a remote
// registry; the detector only needs the capability.
type NameLookup interface {
	LookupName(taxID string) (string, bool)
}

// StaticNameLookup is a map-backed NameLookup, useful for small padrón
// extracts and for tests.
type StaticNameLookup map[string]string

func (m StaticNameLookup) LookupName(taxID string) (string, bool) {
	name, ok := m[taxID]
	return name, ok
}
