package prompts

import "fmt"

// BuildKeywordDensityPrompt asks the model to score keyword usage in a
// piece of content. The caller truncates content before building the
// prompt; this function does not re-check length.
func BuildKeywordDensityPrompt(content, focusKeyword string) string {
	keywordLine := "No focus keyword is set; infer the most likely target keywords."
	if focusKeyword != "" {
		keywordLine = fmt.Sprintf("The focus keyword is: %q", focusKeyword)
	}

	return fmt.Sprintf(`You are an SEO expert analyzing keyword usage in e-commerce content.

%s

Content:
%s

Analyze the keyword usage and respond in JSON format with this structure:
{
  "keywords": [
    {
      "keyword": "the keyword or phrase",
      "count": 3,
      "density": 1.8
    }
  ],
  "recommendations": [
    "specific, actionable recommendation"
  ],
  "score": 72
}

The score is 0-100 where 100 means ideal keyword usage. Densities are
percentages of total words. Be concise; no prose outside the JSON.`, keywordLine, content)
}
