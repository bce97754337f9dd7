package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// transcriptionPrompt is shared by the LLM-backed engines; they transcribe, never interpret
const transcriptionPrompt = `You are an OCR engine. Transcribe every line of printed text visible in this receipt image, exactly as printed, in top-to-bottom reading order.

Return ONLY valid JSON in this exact format:
{
  "lines": ["first line", "second line"]
}

Important:
- One array element per printed line; keep the original spelling, capitalization, spacing and punctuation
- Keep prices, dates and codes exactly as printed; do not compute, correct or summarize anything
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

var transcriptionSchema = jsonschema.MustCompileString("transcription.json", `{
	"type": "object",
	"required": ["lines"],
	"properties": {
		"lines": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`)

type transcription struct {
	Lines []string `json:"lines"`
}

// parseTranscriptionJSON extracts and validates the JSON object in an LLM reply
func parseTranscriptionJSON(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := transcriptionSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}

	var data transcription
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	lines := make([]string, 0, len(data.Lines))
	for _, line := range data.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
