package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/shoplens/seoaudit/pkg/model"
)

// BuildFixPrompt turns an assembled fix request into the prompt sent to the
// generative model. The item and store snapshots are embedded as indented
// JSON so the model has grounded context rather than a paraphrase.
func BuildFixPrompt(req model.FixRequest) (string, error) {
	itemJSON, err := json.MarshalIndent(req.Item, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal item context: %w", err)
	}
	storeJSON, err := json.MarshalIndent(req.Store, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal store context: %w", err)
	}
	reqJSON, err := json.MarshalIndent(req.Requirements, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal requirements: %w", err)
	}

	return fmt.Sprintf(`You are an SEO copywriter for an online store. Write a replacement %s for the item below.

Detected problem (%s, severity %s): %s
Current value: %q

Item:
%s

Store brand context:
%s

Requirements:
%s

Respond in JSON format with this structure:
{
  "suggested_value": "the replacement text, ready to publish",
  "explanation": "one or two sentences on why this is better"
}

Match the brand voice and tone. Do not invent product facts that are not in
the item context. No prose outside the JSON.`,
		req.FixType, req.Issue.Check, req.Issue.Severity, req.Issue.Description,
		req.Issue.CurrentValue, string(itemJSON), string(storeJSON), string(reqJSON)), nil
}
