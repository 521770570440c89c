package routes

import (
	"fmt"
	"net/http"

	"parkwatch/auth"
	"parkwatch/images"
	"parkwatch/middleware"
	"parkwatch/ratelim"
	"parkwatch/slots"
	"parkwatch/websock"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Deps holds everything the router hands out to handlers.
type Deps struct {
	Slots       *slots.Handlers
	Auth        *auth.Handlers
	JWT         *middleware.JWT
	RateLimiter *ratelim.RateLimiter
	Hub         *websock.Hub
	Upgrader    *websocket.Upgrader
	ImageDir    string
	Log         *zap.Logger
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func New(d Deps) *httprouter.Router {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	router := httprouter.New()
	router.GET("/health", Index)

	AddAuthRoutes(router, d)
	AddSlotRoutes(router, d)
	AddStaticRoutes(router, d)
	router.GET("/ws", websock.ServeWS(d.Hub, d.Upgrader, d.Log.Named("websock")))

	return router
}

func limit(rl *ratelim.RateLimiter, h httprouter.Handle) httprouter.Handle {
	if rl == nil {
		return h
	}
	return rl.Limit(h)
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/signup", limit(d.RateLimiter, d.Auth.Signup))
	router.POST("/api/login", limit(d.RateLimiter, d.Auth.Login))
	router.GET("/api/me", d.JWT.Authenticate(d.Auth.Me))
}

func AddSlotRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/parking-data", d.Slots.GetParkingData)
	// Sensor gateways report many slots from one address and never retry,
	// so ingestion is not throttled.
	router.POST("/api/sensor/update", d.Slots.SensorUpdate)
	router.GET("/api/slots/:slotId/qr", d.Slots.SlotQR)
	router.GET("/api/reports/occupancy", d.Slots.OccupancyReport)
}

func AddStaticRoutes(router *httprouter.Router, d Deps) {
	router.GET("/images/:name", images.Handler(d.ImageDir, d.Log.Named("images")))
}
