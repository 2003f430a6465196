package model

import (
	"fmt"
	"strings"
)

// responseMarker separates the instruction preamble from the model's answer
// in the Alpaca template. Completions are sliced after it.
const responseMarker = "### Response:"

const promptTemplate = `Below is an instruction that describes a task. Write a response that appropriately completes the request.

### Instruction:
%s

### Response:
`

// BuildPrompt formats a query in the Alpaca instruction template the temple
// expert model was fine-tuned on.
func BuildPrompt(instruction string) string {
	return fmt.Sprintf(promptTemplate, instruction)
}

// ExtractResponse returns only the content following the response marker.
// Completions without the marker (raw mode usually omits the echo) are
// returned trimmed as-is.
func ExtractResponse(completion string) string {
	if _, after, found := strings.Cut(completion, responseMarker); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(completion)
}
