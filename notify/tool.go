package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nyayagpt/nyaya/agent"
)

// ToolName is the name agents use for the email tool.
const ToolName = "Send Lawyer Email"

// Tool exposes s to agents. The input is a JSON object with "to",
// "subject" and "body"; the output is a one-line status.
func Tool(s Sender) agent.Tool {
	return agent.NewTool(ToolName,
		`Send an email to a lawyer with the case summary and applicable sections. `+
			`Input: {"to": "<email>", "subject": "<subject>", "body": "<text>"}.`,
		func(ctx context.Context, input string) (string, error) {
			var msg Message
			if err := json.Unmarshal([]byte(input), &msg); err != nil {
				return "", fmt.Errorf("notify: tool input must be a JSON object: %w", err)
			}
			res := s.Send(ctx, msg)
			if !res.OK {
				return "Failed to send email: " + res.Error, nil
			}
			return "Email sent successfully", nil
		})
}
