package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadfile/compliance/internal/app/service/verification"
	"github.com/roadfile/compliance/pkg/response"
)

// @Summary      Verify Carrier
// @Description  Public lookup: reports whether the carrier with the given DOT number holds an active arbitration enrollment.
// @Tags         Verification
// @Produce      json
// @Param        dot_number path string true "USDOT number"
// @Success      200  {object}  handlers.RespVerifyCarrier
// @Router       /api/v1/verify/{dot_number} [get]
func ApiVerifyCarrier(svc *verification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		dot := c.Param("dot_number")
		if dot == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing dot_number"))
			return
		}
		res, err := svc.VerifyByDOT(c.Request.Context(), dot)
		if err != nil {
			if errors.Is(err, verification.ErrCarrierNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterVerificationRoutes(r gin.IRouter, svc *verification.Service) {
	r.GET("/verify/:dot_number", ApiVerifyCarrier(svc))
}
