// Package gen implements the content generation pipeline: topic extraction
// from a raw prompt, concurrent per-topic variant generation against a
// content model, and normalization of model output into candidates.
package gen

import (
	"regexp"
	"strings"
)

const maxTopics = 10

// Extraction regexes compiled once at package init.
var (
	reEnumItem   = regexp.MustCompile(`^(\d+)[.)\-]?\s+(.*)$`)
	reBulletItem = regexp.MustCompile(`^[-*]\s+(.*)$`)
	reSoftClause = regexp.MustCompile(`(?i)(?:on|for|about)\s+(.+)`)
	reSoftSplit  = regexp.MustCompile(`[;,|]`)
)

// ExtractTopics parses a raw prompt into 1–10 discrete topics.
//
// Enumerated lines ("1 happy diwali", "2) ...", "3. ...") and bulleted lines
// ("- happy diwali") are collected first. When no list is present, the tail
// of the first "on"/"for"/"about" clause is split on ';', ',' or '|' and
// kept if that yields at least two parts. Otherwise the whole trimmed prompt
// is the single topic. Results are deduplicated in first-seen order and
// capped at 10.
//
// A whitespace-only prompt yields a single empty topic; validating prompts
// is the caller's job.
func ExtractTopics(raw string) []string {
	var topics []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if m := reEnumItem.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[2]) != "" {
			topics = append(topics, strings.TrimSpace(m[2]))
			continue
		}
		if m := reBulletItem.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			topics = append(topics, strings.TrimSpace(m[1]))
		}
	}
	if len(topics) > 0 {
		return dedupe(topics)
	}

	if m := reSoftClause.FindStringSubmatch(raw); m != nil {
		var parts []string
		for _, p := range reSoftSplit.Split(m[1], -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) >= 2 {
			return dedupe(parts)
		}
	}

	return []string{strings.TrimSpace(raw)}
}

// dedupe removes duplicates preserving first-seen order and caps the result.
func dedupe(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == maxTopics {
			break
		}
	}
	return out
}
