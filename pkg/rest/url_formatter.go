package rest

import (
	"strings"
)

// urlFormatter builds request URLs from configuration fixed at construction.
type urlFormatter struct {
	scheme         string
	host           string
	defaultVersion string
	formatPaths    bool
	// validateVersion checks a per-call version override.
	validateVersion func(version string) error
}

// Format returns <scheme>://<host>/<path><query>. With path shaping on, the
// path gains an admin/api/<version>/ prefix unless it already starts with
// "admin", and a .json suffix unless it already has one.
func (f *urlFormatter) Format(path, version string, params *SearchParams) (string, error) {
	if version != "" {
		if err := f.validateVersion(version); err != nil {
			return "", err
		}
	} else {
		version = f.defaultVersion
	}

	path = strings.TrimPrefix(path, "/")
	if f.formatPaths {
		path = shapePath(path, version)
	}

	return f.scheme + "://" + f.host + "/" + path + SerializeParams(params), nil
}

func shapePath(path, version string) string {
	if !strings.HasPrefix(path, "admin") {
		path = "admin/api/" + version + "/" + path
	}
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	return path
}
