package transform

// KeySep joins nested field names into flat column keys, e.g. "likes/count".
const KeySep = "/"

// Flatten turns an arbitrarily nested provider record into a flat map whose
// keys are KeySep-joined paths, so every leaf value is addressable by the
// alias table. Non-map values (including arrays) are kept as leaves.
func Flatten(record map[string]any) map[string]any {
	flat := make(map[string]any, len(record))
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		path := key
		if prefix != "" {
			path = prefix + KeySep + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, path, nested)
			continue
		}
		dst[path] = value
	}
}
