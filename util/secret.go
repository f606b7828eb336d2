package util

// MaskSecret shows at most visiblePrefix characters of s for log output.
// Values no longer than the prefix are fully masked; an empty value stays
// empty so an unset secret remains visible as such.
func MaskSecret(s string, visiblePrefix int) string {
	if s == "" {
		return ""
	}
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
