package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// Interactions is the write side of the interaction tracker
type Interactions interface {
	StatusSource
	ApplyToJob(ctx context.Context, id domain.JobID) error
	Withdraw(ctx context.Context, id domain.JobID) error
}

// JobInteractionParams identifies the job to act on
type JobInteractionParams struct {
	JobID int64 `json:"job_id" jsonschema:"Job identifier"`
}

// JobInteractionResult reports the status after the change
type JobInteractionResult struct {
	JobID    domain.JobID         `json:"job_id"`
	Status   interaction.Status   `json:"status"`
	Counters interaction.Counters `json:"counters"`
}

type interactionTool struct {
	tracker   Interactions
	refresher Refresher
	total     func() int
	logger    *logging.Logger
}

// WithInteractionTools registers job_withdraw, job_apply and interactions_refresh.
// total reports the current listing size used by the counters.
func WithInteractionTools(tracker Interactions, refresher Refresher, total func() int) Option {
	return func(reg *registry) {
		t := interactionTool{tracker: tracker, refresher: refresher, total: total, logger: reg.logger}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_withdraw",
			Description: "Withdraw the application to a job",
		}, t.withdraw)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_apply",
			Description: "Mark a job as applied without sending documents, e.g. to undo a withdrawal",
		}, t.apply)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "interactions_refresh",
			Description: "Reload applied and withdrawn jobs from the job board",
		}, t.refresh)

		reg.add("job_withdraw")
		reg.add("job_apply")
		reg.add("interactions_refresh")
	}
}

func (t interactionTool) withdraw(ctx context.Context, req *sdkmcp.CallToolRequest, params JobInteractionParams) (*sdkmcp.CallToolResult, any, error) {
	return t.change(ctx, "job_withdraw", params.JobID, t.tracker.Withdraw)
}

func (t interactionTool) apply(ctx context.Context, req *sdkmcp.CallToolRequest, params JobInteractionParams) (*sdkmcp.CallToolResult, any, error) {
	return t.change(ctx, "job_apply", params.JobID, t.tracker.ApplyToJob)
}

func (t interactionTool) change(ctx context.Context, tool string, raw int64, op func(context.Context, domain.JobID) error) (*sdkmcp.CallToolResult, any, error) {
	if raw <= 0 {
		return failure(tool, &domain.ValidationError{Field: "job_id", Msg: "must be positive"})
	}
	id := domain.JobID(raw)

	if err := op(ctx, id); err != nil {
		t.logger.Warn(tool+" failed", "job_id", id, "err", err)
		return failure(tool, err)
	}

	result := JobInteractionResult{JobID: id, Status: t.tracker.Status(id), Counters: t.tracker.Counters(t.total())}
	return textResult(fmt.Sprintf("[%s] job #%d is now %s", tool, id, result.Status)), result, nil
}

func (t interactionTool) refresh(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, any, error) {
	report, err := t.refresher.RefreshData(ctx)
	if err != nil {
		return failure("interactions_refresh", err)
	}

	msg := fmt.Sprintf("[interactions_refresh] %d applied, %d withdrawn, %d confirmed, %d reverted",
		report.Applied, report.Withdrawn, len(report.Confirmed), len(report.Reverted))
	return textResult(msg), report, nil
}
