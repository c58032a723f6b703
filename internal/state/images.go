package state

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizeImages converts raw stored image values into labelled
// references. A string is a URL labelled by its file name without
// extension; an object contributes the first non-empty of label, name and
// the file name of url. Anything unresolvable becomes "image-N" (1-based).
func NormalizeImages(raw []any) []ImageRef {
	refs := make([]ImageRef, 0, len(raw))
	for i, v := range raw {
		var ref ImageRef
		switch img := v.(type) {
		case string:
			ref = ImageRef{Label: LabelFromURL(img), URL: img}
		case map[string]any:
			u, _ := img["url"].(string)
			ref.URL = u
			for _, key := range []string{"label", "name"} {
				if s, ok := img[key].(string); ok && strings.TrimSpace(s) != "" {
					ref.Label = strings.TrimSpace(s)
					break
				}
			}
			if ref.Label == "" {
				ref.Label = LabelFromURL(u)
			}
		}
		if ref.Label == "" {
			ref.Label = fmt.Sprintf("image-%d", i+1)
		}
		refs = append(refs, ref)
	}
	return refs
}

// Labels returns the labels of refs.
func Labels(refs []ImageRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Label
	}
	return out
}

// LabelFromURL derives a display label from the last path segment of raw
// with its extension removed. Returns "" when nothing usable remains.
func LabelFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return strings.TrimSpace(base)
}

// IsURL reports whether s looks like an absolute http(s) URL or a rooted path.
func IsURL(s string) bool {
	if strings.HasPrefix(s, "/") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
