package tools

import (
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/search"
)

// kindSuperseded marks a result dropped because a newer request replaced it
const kindSuperseded domain.ErrorKind = "superseded"

// ToolError is the structured payload of a failed tool call
type ToolError struct {
	Kind     domain.ErrorKind      `json:"kind"`
	Message  string                `json:"message"`
	Recovery domain.Recovery       `json:"recovery,omitempty"`
	Missing  []domain.DocumentType `json:"missing,omitempty"`
}

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// failure renders err as an error result the agent can act on
func failure(tool string, err error) (*sdkmcp.CallToolResult, any, error) {
	te := toolError(err)

	res := textResult(fmt.Sprintf("[%s] %s", tool, te.Message))
	res.IsError = true
	return res, te, nil
}

func toolError(err error) ToolError {
	if errors.Is(err, search.ErrSuperseded) || errors.Is(err, application.ErrSuperseded) {
		return ToolError{Kind: kindSuperseded, Message: "a newer request replaced this one"}
	}

	te := ToolError{
		Kind:     domain.Classify(err),
		Message:  domain.UserMessage(err),
		Recovery: domain.RecoveryFor(err),
	}

	var conflict *domain.StateConflictError
	if errors.As(err, &conflict) {
		te.Missing = conflict.Missing
	}
	return te
}
