// Package urlscan finds scheme-qualified http(s) URLs embedded in free text.
//
// Only URLs with an explicit lowercase http:// or https:// scheme are
// recognised. Bare domains ("example.com") and other schemes ("ftp://") are
// never matched. Matches are returned exactly as they appear in the input:
// no case folding, no trailing-slash trimming, no percent-decoding.
package urlscan

import "regexp"

// urlPattern implements the URL grammar: scheme, dotted hostname (labels of
// alphanumerics and hyphens, not starting or ending with a hyphen, ending in
// a top-level label of two or more letters) or dotted-quad IPv4, then an
// optional path, query and fragment over a restricted safe character set.
var urlPattern = regexp.MustCompile(`https?://` +
	`(?:(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}` +
	`|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?:/[\w\-.~!$&'()*+,;=:@%/]*)*` +
	`(?:\?[\w\-.~!$&'()*+,;=:@%/?]*)?` +
	`(?:#[\w\-.~!$&'()*+,;=:@%/?]*)?`)

// Extract returns every URL found in text, in first-occurrence order.
// Scanning is longest-match and non-overlapping; duplicates are kept as
// found. The returned slice is nil when text contains no URLs.
func Extract(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Matches reports whether s on its own satisfies the full URL grammar.
// Every string returned by Extract satisfies Matches.
func Matches(s string) bool {
	m := urlPattern.FindString(s)
	return m == s && m != ""
}
