package discover

import (
	"fmt"
	"strings"
)

// BuildURLs composes one candidate stream URL per path, preserving path
// order. Pure function: no I/O, no normalization beyond what is specified.
//
// Credential embedding: a non-empty user yields "user:password@" before the
// host, with an absent password rendered as the empty string. Paths lose a
// single leading slash; an empty path produces a URL with no path component
// at all, not a trailing slash.
func BuildURLs(ip string, port int, user, password string, paths []string) []string {
	auth := ""
	if user != "" {
		auth = user + ":" + password + "@"
	}
	host := fmt.Sprintf("%s:%d", ip, port)

	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimPrefix(p, "/")
		u := "rtsp://" + auth + host
		if p != "" {
			u += "/" + p
		}
		urls = append(urls, u)
	}
	return urls
}
