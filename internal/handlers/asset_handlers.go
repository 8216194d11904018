package handlers

import (
	"net/http"

	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/gin-gonic/gin"
)

// AssetHandler lists the accounts proposals may act on.
type AssetHandler struct {
	lister assets.Lister
}

func NewAssetHandler(lister assets.Lister) *AssetHandler {
	return &AssetHandler{lister: lister}
}

// ListGovernedAccounts returns governed accounts, filtered by the optional
// type query parameter.
func (h *AssetHandler) ListGovernedAccounts(c *gin.Context) {
	accountType := assets.AccountType(c.Query("type"))
	switch accountType {
	case "", assets.AccountTypeToken, assets.AccountTypeSol, assets.AccountTypeMint,
		assets.AccountTypeProgram, assets.AccountTypeGeneric:
	default:
		sendError(c, http.StatusBadRequest, "Invalid account type", nil)
		return
	}

	accounts, err := h.lister.ListGovernedAccounts(c.Request.Context(), accountType)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list governed accounts", err)
		return
	}
	sendList(c, accounts)
}
