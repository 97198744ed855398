package api

import (
	"github.com/segunla/paygrab/config"

	"github.com/segunla/paygrab/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/segunla/paygrab"
)

type Api struct {
	paygrab *paygrab.PayGrab
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/orders", a.SubmitOrder)
	router.GET("/orders", a.ListOrders)
	router.GET("/orders/:id", a.GetOrder)
	router.POST("/orders/:id/grab", a.GrabOrder)
	router.PUT("/orders/:id/settle", a.SettleOrder)
	router.GET("/orders/:id/repayment", a.GetRepayment)

	router.GET("/shares/:id/schedules", a.GetScheduleRows)

	router.POST("/payees", a.CreatePayee)
	router.GET("/payees/:id", a.GetPayee)
	router.GET("/payees", a.GetAllPayees)
	router.PUT("/payees/:id/daily-limit", a.UpdateDailyLimit)
	router.POST("/payees/:id/receiving-codes", a.AddReceivingCode)
	router.DELETE("/receiving-codes/:id", a.DeactivateReceivingCode)

	router.GET("/events", a.StreamEvents)
	return a.router
}

func NewAPI(b *paygrab.PayGrab) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{paygrab: b, router: r}
}
