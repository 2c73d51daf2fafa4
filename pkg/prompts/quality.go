package prompts

import "fmt"

// BuildContentQualityPrompt asks the model for a four-way quality breakdown
// of a content item. contentType is the item variant ("product", "page",
// "post", ...) so the model judges against the right expectations.
func BuildContentQualityPrompt(content, contentType string) string {
	return fmt.Sprintf(`You are an SEO expert reviewing the quality of %s content for an online store.

Content:
%s

Score the content and respond in JSON format with this structure:
{
  "readability": 70,
  "engagement": 65,
  "seo": 80,
  "structure": 60,
  "score": 69,
  "issues": [
    "specific problem found in the content"
  ],
  "improvements": [
    "specific, actionable improvement"
  ]
}

All scores are 0-100. "score" is the overall score. Be concise; no prose
outside the JSON.`, contentType, content)
}
