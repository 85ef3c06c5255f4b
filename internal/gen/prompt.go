package gen

import "fmt"

// buildPrompt renders the instruction sent to the content model for one
// (topic, variant) job. The model is told to answer with a single JSON
// object of exactly three fields; the variant number nudges it toward a
// different take per variant.
func buildPrompt(platform, topic string, variant int) string {
	return fmt.Sprintf(`You are creating a %s post for the topic: %q.
Return ONLY a JSON object with these exact fields:
- "text": a concise, engaging caption tailored to %s (no emoji overload, 2-3 short lines max)
- "hashtags": a space-separated string of 5-10 relevant, trending hashtags (no '#facebook', no '#instagram')
- "mediaDescription": a vivid description for an image that fits the topic

Rules:
- Do NOT wrap in backticks.
- Do NOT include extra keys.
- Variation number: %d`, platform, topic, platform, variant)
}
