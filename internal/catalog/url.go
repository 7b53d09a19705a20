package catalog

import "strings"

// PlaylistIDFromURL pulls the playlist id out of a pasted playlist link,
// e.g. https://youtube.com/playlist?list=PL123&foo=bar yields PL123. It
// takes the first query parameter whose text contains "list" and returns
// the value after its "=".
func PlaylistIDFromURL(raw string) (string, bool) {
	i := strings.Index(raw, "?")
	if i == -1 {
		return "", false
	}
	for _, param := range strings.Split(raw[i:], "&") {
		if !strings.Contains(param, "list") {
			continue
		}
		parts := strings.Split(param, "=")
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	return "", false
}
