package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common ranking workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("prioritize_tasks").
		Description("Turn a loose task list into a ranked plan using the ranking tools.").
		Argument("tasks", "Free-form list of tasks, one per line", false).
		Argument("strategy", "smart_balance, fastest_wins, high_impact or deadline_driven", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return prioritizePrompt(args), nil
		})

	srv.Prompt("tune_weights").
		Description("Adjust strategy weights after a ranking felt wrong.").
		Argument("complaint", "What was ranked too high or too low", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return tunePrompt(args), nil
		})

	return nil
}

func prioritizePrompt(args map[string]string) *mcp.PromptResult {
	tasks := args["tasks"]
	if tasks == "" {
		tasks = "[Please list the tasks you want ranked]"
	}
	strategy := args["strategy"]
	if strategy == "" {
		strategy = "smart_balance"
	}

	return &mcp.PromptResult{
		Description: "Task Prioritization",
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Help me decide what to work on.

**Tasks:**
%s

Please:
1. Turn each task into an object with id, title and, where you can infer
   them, due_date (YYYY-MM-DD), estimated_hours, importance (1-10) and
   dependencies (ids of tasks it waits on)
2. Call the ranking.analyze tool with strategy "%s"
3. If the result reports a circular dependency, point out the tasks in the
   cycle and ask me how to break it
4. Summarize the top three tasks and explain each score from its reason

Ask before guessing a due date or importance that changes the order.`, tasks, strategy),
				},
			},
		},
	}
}

func tunePrompt(args map[string]string) *mcp.PromptResult {
	complaint := args["complaint"]
	if complaint == "" {
		complaint = "[Describe which tasks ranked too high or too low]"
	}

	return &mcp.PromptResult{
		Description: "Weight Tuning",
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`The last ranking did not match my priorities:

%s

Please:
1. Read the current weights from the triage://weights resource
2. Decide which signals (urgency, importance, effort, dependency) explain
   the mismatch
3. Propose small deltas, at most 0.1 per signal, and show me the expected
   weights after renormalization
4. Once I confirm, call the ranking.feedback tool with those adjustments`, complaint),
				},
			},
		},
	}
}
