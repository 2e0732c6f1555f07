package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// StrPtrOrNil returns nil for an empty string, otherwise a pointer to s.
func StrPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
