package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/app/service/auth"
	"github.com/roadfile/compliance/internal/app/service/lifecycle"
	"github.com/roadfile/compliance/internal/app/service/notification"
	"github.com/roadfile/compliance/internal/app/service/order"
	"github.com/roadfile/compliance/pkg/response"
	"github.com/roadfile/compliance/pkg/types"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
}

// @Summary      Admin Login
// @Description  Exchanges admin credentials for a bearer token.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body adminLoginRequest true "Admin credentials"
// @Success      200  {object}  handlers.RespAdminLogin
// @Router       /api/v1/admin/login [post]
func ApiAdminLogin(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		token, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&adminLoginResponse{Token: token}))
	}
}

// @Summary      List Services (Admin)
// @Description  Retrieves a paginated and filterable list of filings from one service table.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body order.ScanServicesRequest true "List request with service type, filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListServices
// @Router       /api/v1/admin/list_services [post]
func ApiListServices(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.ScanServicesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanServices(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type updateServiceStatusRequest struct {
	ServiceType types.ServiceType   `json:"service_type"`
	ServiceID   string              `json:"service_id"`
	Status      types.ServiceStatus `json:"status"`
	Notes       string              `json:"notes"`
}

// @Summary      Update Service Status (Admin)
// @Description  Sets a filing's status, including cancellation.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body updateServiceStatusRequest true "Status update"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/update_service_status [post]
func ApiUpdateServiceStatus(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateServiceStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ServiceID == "" || req.Status == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing service_id or status"))
			return
		}
		err := svc.UpdateServiceStatus(c.Request.Context(), req.ServiceType, req.ServiceID, req.Status, req.Notes)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "service not found"))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List Notifications (Admin)
// @Description  Retrieves a paginated and filterable list of lifecycle notifications.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body notification.ScanRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/list_notifications [post]
func ApiListNotificationsAdmin(notes *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req notification.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := notes.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type runJobRequest struct {
	Job string `json:"job"`
}

// @Summary      Run Lifecycle Job (Admin)
// @Description  Triggers one lifecycle job (expire-services, expiration-check or autopay) outside its schedule.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body runJobRequest true "Job name"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/run_job [post]
func ApiRunJob(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := svc.RunJob(c.Request.Context(), req.Job); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminRoutes(r gin.IRouter, ordersvc *order.Service, jobs *lifecycle.Service, notes *notification.Service) {
	r.POST("/list_services", ApiListServices(ordersvc))
	r.POST("/list_notifications", ApiListNotificationsAdmin(notes))
	r.POST("/update_service_status", ApiUpdateServiceStatus(ordersvc))
	r.POST("/run_job", ApiRunJob(jobs))
}
