package domain

// Organization, Space and PlatformApp are the platform resources walked
// during discovery. GUIDs are opaque platform identifiers.
type Organization struct {
	GUID string
	Name string
}

type Space struct {
	GUID string
	Name string
}

type PlatformApp struct {
	GUID string
	Name string // raw name, ex: checkout-prod
}
