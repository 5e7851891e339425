package domain

import "strings"

const (
	// EmptyCell is shown for an application that has no observation in a space.
	EmptyCell = "-"

	unknownBranch   = "(unknown)"
	snapshotSuffix  = "-SNAPSHOT"
	labelProbeIsOK  = "UP - no endpoint"
	labelProbeIsBad = "DOWN or no endpoint"
)

// labelOverrides maps raw labels of failure sentinels to operator-friendly text.
// ERROR/200 means the service answered but not with metadata, so the probe
// path is at fault rather than the service.
var labelOverrides = map[string]string{
	ErrorBranch + "/200": labelProbeIsOK,
	ErrorBranch + "/404": labelProbeIsBad,
}

// NormalizeBranch drops the first segment of a /-separated ref:
// "refs/heads/main" -> "heads/main". Branches without "/" are returned as is.
func NormalizeBranch(branch string) string {
	if _, rest, found := strings.Cut(branch, "/"); found {
		branch = rest
	}
	if branch == "" {
		return unknownBranch
	}
	return branch
}

// NormalizeVersion strips one trailing "-SNAPSHOT".
func NormalizeVersion(version string) string {
	return strings.TrimSuffix(version, snapshotSuffix)
}

// Label derives the matrix cell text for an observation.
// A nil observation yields EmptyCell.
func Label(o Observation) string {
	if o == nil {
		return EmptyCell
	}

	branch, ok := o.Field(BranchField)
	if !ok {
		branch = EmptyCell
	}
	version, ok := o.Field(VersionField)
	if !ok {
		version = EmptyCell
	}

	label := NormalizeBranch(branch) + "/" + NormalizeVersion(version)
	if override, ok := labelOverrides[label]; ok {
		return override
	}
	return label
}
