// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/heesho/launchpad/app/services/engine/handlers/v1/public"
	"github.com/heesho/launchpad/foundation/events"
	"github.com/heesho/launchpad/foundation/launchpad/state"
	"github.com/heesho/launchpad/foundation/nameservice"
	"github.com/heesho/launchpad/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)

	app.Handle(http.MethodGet, version, "/mining/epoch", pbl.Mining)
	app.Handle(http.MethodGet, version, "/mining/price", pbl.MiningPrice)
	app.Handle(http.MethodGet, version, "/mining/rate", pbl.MiningRate)
	app.Handle(http.MethodPost, version, "/mining/mine", pbl.SubmitMine)

	app.Handle(http.MethodGet, version, "/treasury/epoch", pbl.Treasury)
	app.Handle(http.MethodGet, version, "/treasury/price", pbl.TreasuryPrice)
	app.Handle(http.MethodPost, version, "/treasury/buy", pbl.SubmitBuy)

	app.Handle(http.MethodGet, version, "/balances/:symbol", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/:symbol/:account", pbl.Balances)
}
