package handlers

import (
	"net/http"

	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/middleware"
	"github.com/dual-finance/governance-proposals/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InstructionHandler serves the instruction catalog and one-shot builds.
type InstructionHandler struct {
	registry *instructions.Registry
	env      instructions.Env
}

// NewInstructionHandler creates a handler building against env.
func NewInstructionHandler(registry *instructions.Registry, env instructions.Env) *InstructionHandler {
	return &InstructionHandler{
		registry: registry,
		env:      env,
	}
}

// InstructionTypeResponse describes one buildable instruction type.
type InstructionTypeResponse struct {
	Object string            `json:"object"`
	Kind   instructions.Kind `json:"kind"`
	Name   string            `json:"name"`
	Rules  []validation.Rule `json:"rules"`
}

// BuildInstructionRequest is the body of a one-shot build.
type BuildInstructionRequest struct {
	Values validation.Values `json:"values"`
}

// requestEnv returns the handler env with the caller's connected wallet.
func requestEnv(c *gin.Context, base instructions.Env) instructions.Env {
	env := base
	env.Wallet = middleware.GetWallet(c)
	return env
}

// ListInstructionTypes lists every instruction kind with its form schema.
func (h *InstructionHandler) ListInstructionTypes(c *gin.Context) {
	kinds := h.registry.Kinds()
	out := make([]InstructionTypeResponse, 0, len(kinds))
	for _, kind := range kinds {
		builder, err := h.registry.Get(kind)
		if err != nil {
			handleLookupError(c, err)
			return
		}
		schema := builder.Schema()
		out = append(out, InstructionTypeResponse{
			Object: "instruction_type",
			Kind:   kind,
			Name:   schema.Name,
			Rules:  schema.Rules,
		})
	}
	sendList(c, out)
}

// BuildInstruction validates and builds a single instruction without a draft.
// It answers 200 with a valid envelope and 422 with an invalid one.
func (h *InstructionHandler) BuildInstruction(c *gin.Context) {
	builder, err := h.registry.Get(instructions.Kind(c.Param("kind")))
	if err != nil {
		handleLookupError(c, err)
		return
	}

	var req BuildInstructionRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Values == nil {
		req.Values = validation.Values{}
	}

	envelope, err := builder.Build(c.Request.Context(), req.Values, requestEnv(c, h.env))
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to build instruction", err)
		return
	}

	middleware.LogWithCorrelationID(c.Request.Context()).Debug("Built instruction",
		zap.String("kind", string(builder.Kind())),
		zap.Bool("valid", envelope.IsValid),
	)

	sendSuccess(c, envelopeStatus(envelope.IsValid), envelope)
}
