package middleware

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

const (
	// WalletHeader carries the public key of the caller's connected wallet.
	WalletHeader = "X-Wallet-Pubkey"
	walletKey    = "wallet"
)

// WalletMiddleware parses the connected wallet header. Requests without the
// header proceed with no wallet; a malformed key is rejected.
func WalletMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(WalletHeader)
		if raw == "" {
			c.Next()
			return
		}

		wallet, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + WalletHeader + " header"})
			return
		}

		c.Set(walletKey, wallet)
		c.Next()
	}
}

// GetWallet returns the connected wallet, or nil when none was sent.
func GetWallet(c *gin.Context) *solana.PublicKey {
	if v, exists := c.Get(walletKey); exists {
		if wallet, ok := v.(solana.PublicKey); ok {
			return &wallet
		}
	}
	return nil
}
