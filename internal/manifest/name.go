package manifest

import "strings"

const maxNameLen = 63

// ServiceName derives a DNS-1035 label from a model reference, e.g.
// ("uplift_model", "1") -> "uplift-model-v1". An unresolved "latest" version
// contributes nothing. Names that would start with a digit get an "m-" prefix.
func ServiceName(model, version string) string {
	base := model
	if version != "" && version != LatestVersion {
		base += "-v" + version
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.Trim(b.String(), "-")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "m-" + name
	}
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "-")
	}
	if name == "" {
		return "model"
	}
	return name
}
