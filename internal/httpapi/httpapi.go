// Package httpapi implements component E: the two-tier HTTP Basic Auth
// surface the node exposes for invoice creation, payments, LNURL flows,
// splice operations, and history export.
package httpapi

import (
	"net/http"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/build/teslalog"
	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/liquidity"
	"gitlab.com/arcanecrypto/noded/internal/lnproto"
	"gitlab.com/arcanecrypto/noded/internal/peer"
	"gitlab.com/arcanecrypto/noded/internal/store"
)

var log = teslalog.New("HTTP")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// Config carries everything the HTTP surface needs beyond its
// collaborators: the two passwords gating the read and full-access
// tiers, and where payment history exports are written.
type Config struct {
	PrimaryPassword  string
	ReadOnlyPassword string
	ExportsDir       string
	Network          *chaincfg.Params
}

// Server is the HTTP surface: a Gin engine wired against the payments
// store, the liquidity cell, the peer supervisor, and the protocol
// engine/address resolver collaborators.
type Server struct {
	Router *gin.Engine

	config     Config
	store      *store.Store
	liquidity  *liquidity.Cell
	supervisor *peer.Supervisor
	engine     lnproto.ProtocolEngine
	resolver   lnproto.AddressResolver
	network    *chaincfg.Params
}

// New builds the Gin engine and registers every route named by the
// HTTP surface.
func New(config Config, st *store.Store, liquidityCell *liquidity.Cell, supervisor *peer.Supervisor, engine lnproto.ProtocolEngine, resolver lnproto.AddressResolver) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(teslalog.GinLoggingMiddleWare(log))
	router.Use(cors.New(cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "Sec-WebSocket-Protocol"},
	}))
	router.Use(apierr.GetMiddleware(log))

	router.NoRoute(func(c *gin.Context) {
		apierr.Public(c, http.StatusNotFound, apierr.ErrRouteNotFound)
	})

	network := config.Network
	if network == nil {
		network = &chaincfg.MainNetParams
	}

	s := &Server{
		Router:     router,
		config:     config,
		store:      st,
		liquidity:  liquidityCell,
		supervisor: supervisor,
		engine:     engine,
		resolver:   resolver,
		network:    network,
	}

	s.registerRoutes()
	return s
}
