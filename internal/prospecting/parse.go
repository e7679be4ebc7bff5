package prospecting

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?s)```json\n(.*?)\n```")
	bareFence = regexp.MustCompile("(?s)```\n(.*?)\n```")
)

// ParseProspects extracts the JSON array from the first fenced block of a
// search reply. A missing or malformed block yields no prospects.
func ParseProspects(text string) ([]Prospect, error) {
	m := jsonFence.FindStringSubmatch(text)
	if m == nil {
		m = bareFence.FindStringSubmatch(text)
	}
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return []Prospect{}, nil
	}

	var prospects []Prospect
	if err := json.Unmarshal([]byte(m[1]), &prospects); err != nil {
		return []Prospect{}, err
	}
	if prospects == nil {
		prospects = []Prospect{}
	}
	return prospects, nil
}

// HasJSONBlock reports whether text carries a ```json fence.
func HasJSONBlock(text string) bool {
	return strings.Contains(text, "```json")
}
