package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/app/service/notification"
	"github.com/roadfile/compliance/internal/app/service/order"
	"github.com/roadfile/compliance/pkg/response"
)

// @Summary      Purchase Service
// @Description  Charges the stored card and creates one filing with a one-year term.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request body order.PurchaseServiceRequest true "Purchase request"
// @Success      200  {object}  handlers.RespPurchaseService
// @Router       /api/v1/orders/purchase_service [post]
func ApiPurchaseService(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PurchaseServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.PurchaseService(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, order.ErrPaymentDeclined) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Purchase Bundle
// @Description  Charges the bundle price once and creates the bundle plus its member filings on a shared expiry.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request body order.PurchaseBundleRequest true "Bundle purchase request"
// @Success      200  {object}  handlers.RespPurchaseBundle
// @Router       /api/v1/orders/purchase_bundle [post]
func ApiPurchaseBundle(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PurchaseBundleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.PurchaseBundle(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, order.ErrPaymentDeclined) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type saveCardRequest struct {
	UserID      string `json:"user_id"`
	CardID      string `json:"card_id"`
	CardLast4   string `json:"card_last4"`
	CardBrand   string `json:"card_brand"`
	CustomerRef string `json:"customer_ref"`
}

// @Summary      Save Card
// @Description  Stores a payment method reference on the account and enables autopay.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body saveCardRequest true "Card details"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/account/save_card [post]
func ApiSaveCard(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		err := svc.SaveCard(c.Request.Context(), req.UserID, req.CardID, req.CardLast4, req.CardBrand, req.CustomerRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "user not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type setAutopayRequest struct {
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
}

// @Summary      Set Autopay
// @Description  Enables or disables automatic renewal for the account.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request body setAutopayRequest true "Autopay toggle"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/account/set_autopay [post]
func ApiSetAutopay(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setAutopayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := svc.SetAutopay(c.Request.Context(), req.UserID, req.Enabled); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "user not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List Notifications
// @Description  Returns the account's notification history, newest first.
// @Tags         Account
// @Produce      json
// @Param        user_id query string true "User ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/account/notifications [get]
func ApiListNotifications(notes *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		rows, err := notes.ListByUser(c.Request.Context(), userID, 100)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

func RegisterOrderRoutes(r gin.IRouter, svc *order.Service, notes *notification.Service) {
	r.POST("/orders/purchase_service", ApiPurchaseService(svc))
	r.POST("/orders/purchase_bundle", ApiPurchaseBundle(svc))
	r.POST("/account/save_card", ApiSaveCard(svc))
	r.POST("/account/set_autopay", ApiSetAutopay(svc))
	r.GET("/account/notifications", ApiListNotifications(notes))
}
