package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gymstay/services/booking"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const quoteCacheTTL = 5 * time.Minute

// OfferHandler serves price quotes for an offer and duration without
// creating a booking.
type OfferHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewOfferHandler(service booking.BookingService, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{Service: service, Logger: logger}
}

type quoteResponse struct {
	Bookable    bool       `json:"bookable"`
	Quote       *quoteBody `json:"quote,omitempty"`
	AnchorPrice *quoteBody `json:"anchorPrice,omitempty"`
}

type quoteBody struct {
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Label    string  `json:"label"`
	Currency string  `json:"currency"`
}

// GetQuote handles GET /api/offers/:id/quote?days=N. Quotes are pure
// functions of the offer's rate table so they are cached briefly.
func (h *OfferHandler) GetQuote(c *gin.Context) {
	offerID := c.Param("id")
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid days parameter", "days must be a positive integer")
		return
	}

	cacheKey := fmt.Sprintf("quote:%s:%d", offerID, days)
	if resp, ok := h.cachedQuote(c.Request.Context(), cacheKey); ok {
		c.JSON(http.StatusOK, resp)
		return
	}

	quote, anchor, err := h.Service.QuoteOffer(c.Request.Context(), offerID, days)
	if err != nil {
		respondError(c, err)
		return
	}

	var resp quoteResponse
	if quote != nil {
		resp = quoteResponse{
			Bookable: true,
			Quote: &quoteBody{
				Amount:   quote.Amount,
				Unit:     quote.Unit,
				Label:    quote.Label,
				Currency: quote.Currency,
			},
		}
	} else {
		// Below the minimum stay: not bookable, but the price at the
		// minimum duration is still shown.
		resp = quoteResponse{Bookable: false}
		if anchor != nil {
			resp.AnchorPrice = &quoteBody{
				Amount:   anchor.Amount,
				Unit:     anchor.Unit,
				Label:    anchor.Label,
				Currency: anchor.Currency,
			}
		}
	}
	h.storeQuote(c.Request.Context(), cacheKey, resp)
	c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) cachedQuote(ctx context.Context, key string) (quoteResponse, bool) {
	var resp quoteResponse
	raw, err := utils.GetQuoteCacheClient().Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			h.Logger.Warn("quote cache read failed", zap.Error(err))
		}
		return resp, false
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return resp, false
	}
	return resp, true
}

func (h *OfferHandler) storeQuote(ctx context.Context, key string, resp quoteResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := utils.GetQuoteCacheClient().Set(ctx, key, raw, quoteCacheTTL).Err(); err != nil {
		h.Logger.Warn("quote cache write failed", zap.Error(err))
	}
}
