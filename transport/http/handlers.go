package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/service"
)

// FaucetHandlers contains HTTP handlers for the auth and faucet endpoints
type FaucetHandlers struct {
	auth   *service.AuthService
	faucet *service.FaucetService
}

// NewFaucetHandlers creates new handlers
func NewFaucetHandlers(auth *service.AuthService, faucet *service.FaucetService) *FaucetHandlers {
	return &FaucetHandlers{
		auth:   auth,
		faucet: faucet,
	}
}

// Message handles the challenge request
func (h *FaucetHandlers) Message(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ErrInvalidAddress)
		return
	}

	challenge, err := h.auth.Challenge(c.Request.Context(), req.Address)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": challenge.Message,
		"nonce":   challenge.Nonce,
	})
}

// SignIn handles the signed challenge submission
func (h *FaucetHandlers) SignIn(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ErrMalformedMessage)
		return
	}

	token, address, err := h.auth.SignIn(c.Request.Context(), req.Message, req.Signature)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"address": address,
	})
}

// Status returns the faucet state for the address in the path. The bearer
// token must belong to the same address.
func (h *FaucetHandlers) Status(c *gin.Context) {
	sessionAddress := c.GetString(ContextAddressKey)
	address := c.Param("address")

	if !strings.EqualFold(sessionAddress, address) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "AddressMismatch",
			"message": "token does not match requested address",
		})
		return
	}

	status, err := h.faucet.Status(c.Request.Context(), sessionAddress)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasClaimed":   status.HasClaimed,
		"balance":      status.Balance.String(),
		"users":        status.Users,
		"faucetAmount": status.FaucetAmount.String(),
	})
}

// Claim transfers the one-time allocation to the authenticated address
func (h *FaucetHandlers) Claim(c *gin.Context) {
	address := c.GetString(ContextAddressKey)

	receipt, err := h.faucet.Claim(c.Request.Context(), address)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"txHash":  receipt.TxRef,
		"success": true,
		"message": "tokens sent",
	})
}

// writeError maps a service error onto the error code and HTTP status
// this API exposes.
func writeError(c *gin.Context, err error) {
	code, status := classify(err)
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, core.ErrInvalidAddress):
		return "InvalidAddress", http.StatusBadRequest
	case errors.Is(err, core.ErrMalformedMessage):
		return "MalformedMessage", http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownNonce):
		return "UnknownOrConsumedNonce", http.StatusUnauthorized
	case errors.Is(err, core.ErrNonceMismatch):
		return "NonceMismatch", http.StatusUnauthorized
	case errors.Is(err, core.ErrChallengeExpired):
		return "ChallengeExpired", http.StatusUnauthorized
	case errors.Is(err, core.ErrInvalidSignature):
		return "InvalidSignature", http.StatusUnauthorized
	case errors.Is(err, core.ErrUnauthenticated):
		return "Unauthenticated", http.StatusUnauthorized
	case errors.Is(err, core.ErrAlreadyClaimed):
		return "AlreadyClaimed", http.StatusConflict
	case errors.Is(err, core.ErrFaucetExhausted):
		return "FaucetExhausted", http.StatusServiceUnavailable
	case errors.Is(err, core.ErrRateLimited):
		return "RateLimited", http.StatusTooManyRequests
	case errors.Is(err, core.ErrClaimFailed):
		return "ClaimFailed", http.StatusInternalServerError
	default:
		return "Internal", http.StatusInternalServerError
	}
}
