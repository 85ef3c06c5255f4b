package gen

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/postpilot/postpilot/pkg/models"
)

const (
	mediaTypeImage      = "image"
	placeholderBase     = "https://via.placeholder.com/1024x1024.png?text="
	placeholderTopicLen = 30
)

var reCodeFence = regexp.MustCompile("(?i)```(?:json)?")

// candidatePayload is the JSON object the model is instructed to return.
type candidatePayload struct {
	Text             string `json:"text"`
	Hashtags         string `json:"hashtags"`
	MediaDescription string `json:"mediaDescription"`
}

// normalize converts one raw model result into a ContentCandidate. It never
// fails: unparseable or errored jobs produce a placeholder candidate so
// every requested job yields exactly one candidate.
func normalize(topic string, variant int, raw string, genErr error) models.ContentCandidate {
	if genErr != nil {
		return placeholderCandidate(topic, variant, genErr.Error())
	}

	payload, ok := parsePayload(raw)
	if !ok {
		return placeholderCandidate(topic, variant, "unparseable model response")
	}

	desc := strings.TrimSpace(payload.MediaDescription)
	if desc == "" {
		desc = topic
	}

	return models.ContentCandidate{
		Topic:            topic,
		Variant:          variant,
		Text:             strings.TrimSpace(payload.Text),
		Hashtags:         strings.TrimSpace(payload.Hashtags),
		MediaDescription: desc,
		MediaType:        mediaTypeImage,
		MediaURL:         placeholderMediaURL(topic),
	}
}

// parsePayload is a two-stage parser: a strict unmarshal of the fence-stripped
// text, then a bounded recovery pass over the first balanced {...} span.
func parsePayload(raw string) (candidatePayload, bool) {
	cleaned := strings.TrimSpace(reCodeFence.ReplaceAllString(raw, ""))

	var payload candidatePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return payload, true
	}

	span, ok := firstBalancedObject(cleaned)
	if !ok {
		return candidatePayload{}, false
	}
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return candidatePayload{}, false
	}
	return payload, true
}

// firstBalancedObject returns the first balanced {...} span in s, tracking
// string literals and escapes so braces inside values don't miscount.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// placeholderCandidate is the soft-failure stand-in returned when a job's
// model call or parse failed. The batch continues; the caller still sees
// one candidate per job.
func placeholderCandidate(topic string, variant int, reason string) models.ContentCandidate {
	return models.ContentCandidate{
		Topic:            topic,
		Variant:          variant,
		Text:             fmt.Sprintf("Could not generate caption for %q (variant %d).", topic, variant),
		Hashtags:         "#generation #error",
		MediaDescription: "Placeholder for " + topic,
		MediaType:        mediaTypeImage,
		MediaURL:         placeholderMediaURL(topic),
		GenerationError:  reason,
	}
}

// placeholderMediaURL builds a deterministic stand-in image URL from the
// topic. Real media generation is out of scope; the URL encodes the topic
// so the presentation layer has a visual cue.
func placeholderMediaURL(topic string) string {
	if len(topic) > placeholderTopicLen {
		topic = topic[:placeholderTopicLen]
	}
	return placeholderBase + url.QueryEscape(topic)
}
