package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// CVStatusParams defines the arguments for the cv_status tool
type CVStatusParams struct {
	Action        string `json:"action,omitempty" jsonschema:"info (default), upload, delete or download"`
	FileName      string `json:"file_name,omitempty" jsonschema:"File name for upload"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"Base64 PDF content for upload"`
}

// CVStatusResult describes the CV on file
type CVStatusResult struct {
	HasCV         bool      `json:"has_cv"`
	FileName      string    `json:"file_name,omitempty"`
	UploadDate    time.Time `json:"upload_date,omitzero"`
	ContentBase64 string    `json:"content_base64,omitempty"`
}

// UseExistingCVParams defines the arguments for the application_use_existing_cv tool
type UseExistingCVParams struct {
	Use bool `json:"use" jsonschema:"true selects the CV on file, false deselects it"`
}

// AttachParams defines the arguments for the application_attach tool
type AttachParams struct {
	Type          string `json:"type" jsonschema:"cv or cover_letter"`
	FileName      string `json:"file_name" jsonschema:"Original file name, must end in .pdf"`
	ContentBase64 string `json:"content_base64" jsonschema:"Base64 PDF content"`
}

// RemoveParams defines the arguments for the application_remove tool
type RemoveParams struct {
	Type string `json:"type" jsonschema:"cv or cover_letter"`
}

// SubmitParams defines the arguments for the application_submit tool
type SubmitParams struct {
	JobID int64 `json:"job_id" jsonschema:"Job to apply to"`
}

// EmptyParams is used by tools without arguments
type EmptyParams struct{}

type applicationTool struct {
	cv        *application.CVService
	readiness *application.Readiness
	submitter *application.Submitter
	logger    *logging.Logger
}

// WithApplicationTools registers cv_status and the application_* tools
func WithApplicationTools(cv *application.CVService, readiness *application.Readiness, submitter *application.Submitter) Option {
	return func(reg *registry) {
		t := applicationTool{cv: cv, readiness: readiness, submitter: submitter, logger: reg.logger}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "cv_status",
			Description: "Show, upload, delete or download the CV kept on file",
		}, t.cvStatus)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_use_existing_cv",
			Description: "Select or deselect the CV on file for the application in progress",
		}, t.useExistingCV)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_attach",
			Description: "Attach a PDF CV or cover letter to the application in progress",
		}, t.attach)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_remove",
			Description: "Remove an attached document from the application in progress",
		}, t.remove)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_status",
			Description: "Show which documents are ready and whether the application can be submitted",
		}, t.status)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_submit",
			Description: "Submit the application in progress to a job",
		}, t.submit)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "application_cancel",
			Description: "Abandon the application in progress and clear its documents",
		}, t.cancel)

		reg.add("cv_status")
		reg.add("application_use_existing_cv")
		reg.add("application_attach")
		reg.add("application_remove")
		reg.add("application_status")
		reg.add("application_submit")
		reg.add("application_cancel")
	}
}

func (t applicationTool) cvStatus(ctx context.Context, req *sdkmcp.CallToolRequest, params CVStatusParams) (*sdkmcp.CallToolResult, any, error) {
	var (
		info domain.CVInfo
		err  error
	)

	switch strings.ToLower(params.Action) {
	case "", "info":
		info, err = t.cv.Info(ctx)
	case "upload":
		var content []byte
		content, err = decodeContent("content_base64", params.ContentBase64)
		if err == nil {
			info, err = t.cv.Upload(ctx, params.FileName, content)
		}
	case "delete":
		err = t.cv.Delete(ctx)
	case "download":
		name, content, derr := t.cv.Download(ctx)
		if derr != nil {
			if errors.Is(derr, domain.ErrNoCVOnFile) {
				return textResult("[cv_status] no CV on file"), CVStatusResult{}, nil
			}
			return failure("cv_status", derr)
		}
		result := CVStatusResult{HasCV: true, FileName: name, ContentBase64: base64.StdEncoding.EncodeToString(content)}
		return textResult(fmt.Sprintf("[cv_status] downloaded %s (%d bytes)", name, len(content))), result, nil
	default:
		err = &domain.ValidationError{Field: "action", Msg: "must be info, upload, delete or download"}
	}
	if err != nil {
		t.logger.Warn("cv_status failed", "action", params.Action, "err", err)
		return failure("cv_status", err)
	}

	result := CVStatusResult{HasCV: info.HasCV, FileName: info.FileName, UploadDate: info.UploadDate}
	if !result.HasCV {
		return textResult("[cv_status] no CV on file"), result, nil
	}
	return textResult(fmt.Sprintf("[cv_status] CV on file: %s", result.FileName)), result, nil
}

func (t applicationTool) useExistingCV(ctx context.Context, req *sdkmcp.CallToolRequest, params UseExistingCVParams) (*sdkmcp.CallToolResult, any, error) {
	if params.Use {
		t.readiness.SelectExistingCV()
	} else {
		t.readiness.DeselectExistingCV()
	}
	return t.renderState("application_use_existing_cv")
}

func (t applicationTool) attach(ctx context.Context, req *sdkmcp.CallToolRequest, params AttachParams) (*sdkmcp.CallToolResult, any, error) {
	docType, err := domain.ParseDocumentType(params.Type)
	if err != nil {
		return failure("application_attach", err)
	}
	content, err := decodeContent("content_base64", params.ContentBase64)
	if err != nil {
		return failure("application_attach", err)
	}

	doc, err := t.readiness.Upload(docType, params.FileName, content)
	if err != nil {
		t.logger.Info("document rejected", "type", docType, "file_name", params.FileName, "err", err)
		return failure("application_attach", err)
	}

	t.logger.Debug("document attached", "type", doc.Type, "file_name", doc.Name, "size", doc.Size)
	return t.renderState("application_attach")
}

func (t applicationTool) remove(ctx context.Context, req *sdkmcp.CallToolRequest, params RemoveParams) (*sdkmcp.CallToolResult, any, error) {
	docType, err := domain.ParseDocumentType(params.Type)
	if err != nil {
		return failure("application_remove", err)
	}
	t.readiness.Remove(docType)
	return t.renderState("application_remove")
}

func (t applicationTool) status(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, any, error) {
	return t.renderState("application_status")
}

func (t applicationTool) submit(ctx context.Context, req *sdkmcp.CallToolRequest, params SubmitParams) (*sdkmcp.CallToolResult, any, error) {
	res, err := t.submitter.Submit(ctx, domain.JobID(params.JobID))
	if err != nil {
		return failure("application_submit", err)
	}

	msg := fmt.Sprintf("[application_submit] applied to job #%d with %d document(s)", res.JobID, res.Documents)
	if res.Detached {
		msg += " (the application view was closed before it finished)"
	}
	return textResult(msg), res, nil
}

func (t applicationTool) cancel(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, any, error) {
	t.submitter.Cancel()
	t.readiness.Reset()
	return t.renderState("application_cancel")
}

func (t applicationTool) renderState(tool string) (*sdkmcp.CallToolResult, any, error) {
	state := t.readiness.State()

	msg := fmt.Sprintf("[%s] cv=%s cover_letter=%s can_submit=%t", tool, state.CV, state.CoverLetter, state.CanSubmit)
	if len(state.Missing) > 0 {
		missing := make([]string, 0, len(state.Missing))
		for _, m := range state.Missing {
			missing = append(missing, string(m))
		}
		msg += " missing=" + strings.Join(missing, ",")
	}
	return textResult(msg), state, nil
}
