package shiplog

import (
	"fmt"

	"github.com/bft-labs/shiplog/pkg/ais"
	"github.com/bft-labs/shiplog/pkg/log"
)

// Version is the version of this package.
const Version = "1.0.0"

// ModuleVersions returns the versions of the sub-modules shiplog is built
// from.
func ModuleVersions() map[string]string {
	return map[string]string{
		"shiplog": Version,
		"ais":     ais.Version,
		"log":     log.Version,
	}
}

// validateModuleVersions checks that each sub-module is at least its
// minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"ais": {ais.Version, ais.MinCompatibleVersion},
		"log": {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion, both in
// major.minor.patch form.
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
