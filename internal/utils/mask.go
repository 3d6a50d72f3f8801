package utils

// MaskSecret keeps a short prefix so a user can tell which token is in use.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "*****"
	default:
		return s[:4] + "*****"
	}
}
