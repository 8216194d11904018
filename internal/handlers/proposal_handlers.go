package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dual-finance/governance-proposals/internal/assets"
	awsclient "github.com/dual-finance/governance-proposals/internal/client/aws"
	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/middleware"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalHandler manages proposal drafts and their instruction forms.
type ProposalHandler struct {
	drafts    *proposal.Drafts
	registry  *instructions.Registry
	env       instructions.Env
	publisher awsclient.Publisher
}

// NewProposalHandler creates a proposal handler. publisher may be nil, in
// which case publish requests are refused.
func NewProposalHandler(drafts *proposal.Drafts, registry *instructions.Registry, env instructions.Env, publisher awsclient.Publisher) *ProposalHandler {
	return &ProposalHandler{
		drafts:    drafts,
		registry:  registry,
		env:       env,
		publisher: publisher,
	}
}

// CreateProposalRequest is the body of a new draft.
type CreateProposalRequest struct {
	Name string `json:"name"`
}

// MountInstructionRequest replaces the form at an index.
type MountInstructionRequest struct {
	Kind   instructions.Kind `json:"kind"`
	Values validation.Values `json:"values"`
}

// PatchInstructionRequest edits one field of a mounted form.
type PatchInstructionRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// InstructionFormResponse is the state of one mounted form.
type InstructionFormResponse struct {
	Object          string                  `json:"object"`
	Index           int                     `json:"index"`
	Kind            instructions.Kind       `json:"kind"`
	Values          validation.Values       `json:"values"`
	FormErrors      validation.FieldErrors  `json:"form_errors"`
	GovernedAccount *assets.GovernedAccount `json:"governed_account,omitempty"`
	Version         uint64                  `json:"version"`
}

// ProposalResponse is the state of a draft.
type ProposalResponse struct {
	ID           string                    `json:"id"`
	Object       string                    `json:"object"`
	Name         string                    `json:"name"`
	CreatedAt    int64                     `json:"created_at"`
	Instructions []InstructionFormResponse `json:"instructions"`
}

// BuildProposalResponse carries the assembled proposal.
type BuildProposalResponse struct {
	ID        string             `json:"id"`
	Object    string             `json:"object"`
	Published bool               `json:"published"`
	Proposal  *proposal.Proposal `json:"proposal"`
}

func toFormResponse(form *proposal.Form) InstructionFormResponse {
	return InstructionFormResponse{
		Object:          "instruction_form",
		Index:           form.Index(),
		Kind:            form.Kind(),
		Values:          form.Values(),
		FormErrors:      form.Errors(),
		GovernedAccount: form.GovernedAccount(),
		Version:         form.Version(),
	}
}

func toProposalResponse(draft *proposal.Draft) ProposalResponse {
	forms := draft.Forms()
	out := make([]InstructionFormResponse, 0, len(forms))
	for _, form := range forms {
		out = append(out, toFormResponse(form))
	}
	return ProposalResponse{
		ID:           draft.ID.String(),
		Object:       "proposal_draft",
		Name:         draft.Name,
		CreatedAt:    draft.CreatedAt.Unix(),
		Instructions: out,
	}
}

func (h *ProposalHandler) draft(c *gin.Context) (*proposal.Draft, bool) {
	id, err := uuid.Parse(c.Param("proposal_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid proposal ID format", err)
		return nil, false
	}
	draft, err := h.drafts.Get(id)
	if err != nil {
		handleLookupError(c, err)
		return nil, false
	}
	return draft, true
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		sendError(c, http.StatusBadRequest, "Invalid instruction index", err)
		return 0, false
	}
	return index, true
}

// CreateProposal starts a new draft. The caller's connected wallet is kept
// for builds that draw from it.
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := bindJSON(c, &req); err != nil && !errors.Is(err, io.EOF) {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	draft := h.drafts.Create(req.Name, requestEnv(c, h.env))
	middleware.LogWithCorrelationID(c.Request.Context()).Info("Created proposal draft",
		zap.String("proposal_id", draft.ID.String()),
	)
	sendSuccess(c, http.StatusCreated, toProposalResponse(draft))
}

// GetProposal returns a draft with its forms.
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}
	sendSuccess(c, http.StatusOK, toProposalResponse(draft))
}

// DeleteProposal discards a draft.
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("proposal_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid proposal ID format", err)
		return
	}
	if err := h.drafts.Delete(id); err != nil {
		handleLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MountInstruction places a form of the requested kind at an index,
// replacing any form already there.
func (h *ProposalHandler) MountInstruction(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req MountInstructionRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	builder, err := h.registry.Get(req.Kind)
	if err != nil {
		handleLookupError(c, err)
		return
	}

	form := draft.Mount(index, builder, req.Values)
	sendSuccess(c, http.StatusOK, toFormResponse(form))
}

// PatchInstruction edits one field of a mounted form. The edit clears the
// form's errors until the next build.
func (h *ProposalHandler) PatchInstruction(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req PatchInstructionRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Field == "" {
		sendError(c, http.StatusBadRequest, "field is required", nil)
		return
	}

	form, err := draft.Form(index)
	if err != nil {
		handleLookupError(c, err)
		return
	}
	form.SetField(req.Field, req.Value)
	sendSuccess(c, http.StatusOK, toFormResponse(form))
}

// RemoveInstruction unmounts the form at an index.
func (h *ProposalHandler) RemoveInstruction(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	if err := draft.Remove(index); err != nil {
		handleLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BuildProposal assembles every mounted instruction. It answers 200 for a
// valid proposal and 422 otherwise. With publish=true a valid proposal is
// also sent to the proposal queue.
func (h *ProposalHandler) BuildProposal(c *gin.Context) {
	draft, ok := h.draft(c)
	if !ok {
		return
	}

	publish := c.Query("publish") == "true"
	if publish && h.publisher == nil {
		sendError(c, http.StatusServiceUnavailable, "Proposal publishing is not configured", nil)
		return
	}

	ctx := c.Request.Context()
	assembled, err := draft.Assembler.Assemble(ctx)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to build proposal", err)
		return
	}

	resp := BuildProposalResponse{
		ID:       draft.ID.String(),
		Object:   "proposal",
		Proposal: assembled,
	}

	if publish && assembled.Valid {
		if err := h.publisher.PublishProposal(ctx, draft.ID, assembled); err != nil {
			sendError(c, http.StatusBadGateway, "Failed to publish proposal", err)
			return
		}
		resp.Published = true
	}

	middleware.LogWithCorrelationID(ctx).Info("Built proposal",
		zap.String("proposal_id", draft.ID.String()),
		zap.Bool("valid", assembled.Valid),
		zap.Bool("published", resp.Published),
	)

	sendSuccess(c, envelopeStatus(assembled.Valid), resp)
}
