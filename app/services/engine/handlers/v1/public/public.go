// Package public maintains the group of handlers for public access to the
// launchpad auctions.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heesho/launchpad/business/web/errs"
	"github.com/heesho/launchpad/business/web/metrics"
	"github.com/heesho/launchpad/foundation/events"
	"github.com/heesho/launchpad/foundation/launchpad/epoch"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/mining"
	"github.com/heesho/launchpad/foundation/launchpad/state"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
	"github.com/heesho/launchpad/foundation/nameservice"
	"github.com/heesho/launchpad/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of launchpad endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide settle events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// settleStatus maps a rejected settle to the proper http status. A stale
// epoch id or a bound that no longer holds is a race with another settler,
// anything else is a bad request.
func settleStatus(err error) int {
	switch {
	case errors.Is(err, epoch.ErrEpochMismatch),
		errors.Is(err, epoch.ErrDeadlinePassed),
		errors.Is(err, epoch.ErrPriceLimitExceeded):
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mining returns the live terms of the mining auction epoch.
func (h Handlers) Mining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	view := h.State.RetrieveMining()

	info := miningInfo{
		epochInfo: epochInfo{
			EpochID:   view.Epoch.ID,
			InitPrice: view.Epoch.InitPrice,
			StartTime: view.Epoch.StartTime,
			Price:     h.State.MiningPrice(),
		},
		Rate:     view.Rate,
		Holder:   h.NS.Lookup(view.HolderID),
		HolderID: string(view.HolderID),
		URI:      view.URI,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// MiningPrice returns the current price of the mining auction.
func (h Handlers) MiningPrice(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Price string `json:"price"`
	}{
		Price: h.State.MiningPrice().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MiningRate returns the current emission rate of the mining auction.
func (h Handlers) MiningRate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Rate string `json:"rate"`
	}{
		Rate: h.State.MiningRate().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitMine accepts a signed mine transaction and settles the current
// mining epoch.
func (h Handlers) SubmitMine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx mining.SignedMineTx
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "miner", signedTx.MinerID, "epoch", signedTx.EpochID, "maxprice", signedTx.MaxPrice)

	settle, err := h.State.Mine(signedTx)
	if err != nil {
		if errors.Is(err, state.ErrJournalBehind) {
			return web.NewShutdownError(err.Error())
		}
		return errs.NewTrusted(err, settleStatus(err))
	}

	metrics.AddSettle("mining")

	resp := settleInfo{
		Status:    "epoch settled",
		EpochID:   settle.EpochID,
		Price:     settle.Price,
		Mint:      settle.MintAmount,
		InitPrice: settle.InitPrice,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Treasury returns the live terms of the treasury auction epoch.
func (h Handlers) Treasury(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	view := h.State.RetrieveTreasury()

	info := treasuryInfo{
		epochInfo: epochInfo{
			EpochID:   view.Epoch.ID,
			InitPrice: view.Epoch.InitPrice,
			StartTime: view.Epoch.StartTime,
			Price:     h.State.TreasuryPrice(),
		},
		AccountID: string(view.AccountID),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// TreasuryPrice returns the current payment price of the treasury auction.
func (h Handlers) TreasuryPrice(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Price string `json:"price"`
	}{
		Price: h.State.TreasuryPrice().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitBuy accepts a signed buy transaction and settles the current
// treasury epoch.
func (h Handlers) SubmitBuy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx treasury.SignedBuyTx
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("buy", "traceid", v.TraceID, "receiver", signedTx.ReceiverID, "epoch", signedTx.EpochID, "maxpayment", signedTx.MaxPayment)

	settle, err := h.State.Buy(signedTx)
	if err != nil {
		if errors.Is(err, state.ErrJournalBehind) {
			return web.NewShutdownError(err.Error())
		}
		return errs.NewTrusted(err, settleStatus(err))
	}

	metrics.AddSettle("treasury")

	resp := settleInfo{
		Status:    "epoch settled",
		EpochID:   settle.EpochID,
		Price:     settle.Payment,
		Payment:   settle.Payment,
		InitPrice: settle.InitPrice,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balances returns the balances for the specified token, optionally
// restricted to a single account.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	symbol := ledger.Symbol(web.Param(r, "symbol"))

	var balances []balance

	switch accountID := web.Param(r, "account"); accountID {
	case "":
		for accountID, amount := range h.State.Balances(symbol) {
			balances = append(balances, balance{
				AccountID: accountID,
				Name:      h.NS.Lookup(accountID),
				Amount:    amount,
			})
		}

	default:
		accountID, err := ledger.ToAccountID(accountID)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		balances = append(balances, balance{
			AccountID: accountID,
			Name:      h.NS.Lookup(accountID),
			Amount:    h.State.BalanceOf(symbol, accountID),
		})
	}

	info := balanceInfo{
		Symbol:   symbol,
		Balances: balances,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}
