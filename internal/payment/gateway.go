// Package payment builds the hosted-checkout initiation data for priced
// registrations. The gateway is redirect-based: the applicant is sent to
// the checkout URL and comes back on one of the three return endpoints
// carrying the merchant transaction id.
package payment

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/clubsphere/club-api/internal/config"
)

type Gateway struct {
	cfg *config.Config
}

func NewGateway(cfg *config.Config) *Gateway {
	return &Gateway{cfg: cfg}
}

// Initiation is the payload returned to the caller of a priced submission.
type Initiation struct {
	GatewayURL    string `json:"gateway_url"`
	TransactionID string `json:"transaction_id"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
}

// CheckoutURL assembles the redirect URL for a pending payment. The
// success/fail/cancel URLs point back at this service's payment return
// endpoints, each carrying the transaction id.
func (g *Gateway) CheckoutURL(tranID string, amount int) string {
	q := url.Values{}
	q.Set("store_id", g.cfg.GatewayStoreID)
	q.Set("store_passwd", g.cfg.GatewayStorePass)
	q.Set("tran_id", tranID)
	q.Set("total_amount", strconv.Itoa(amount))
	q.Set("currency", g.cfg.Currency)
	q.Set("success_url", g.returnURL("payment-success", tranID))
	q.Set("fail_url", g.returnURL("payment-failed", tranID))
	q.Set("cancel_url", g.returnURL("payment-cancelled", tranID))
	return g.cfg.GatewayEndpoint + "?" + q.Encode()
}

// Currency returns the configured settlement currency.
func (g *Gateway) Currency() string {
	return g.cfg.Currency
}

// Initiate packages the checkout redirect for one transaction.
func (g *Gateway) Initiate(tranID string, amount int) *Initiation {
	return &Initiation{
		GatewayURL:    g.CheckoutURL(tranID, amount),
		TransactionID: tranID,
		Amount:        amount,
		Currency:      g.cfg.Currency,
	}
}

func (g *Gateway) returnURL(outcome, tranID string) string {
	return fmt.Sprintf("%s/payments/%s?tran_id=%s", g.cfg.BaseURL, outcome, url.QueryEscape(tranID))
}
