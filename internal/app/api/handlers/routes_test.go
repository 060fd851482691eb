package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, rt := range r.Routes() {
		out[rt.Method+" "+rt.Path] = true
	}
	return out
}

func TestRegisterOrderRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterOrderRoutes(g, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/orders/purchase_service"])
	require.True(t, routes["POST /api/v1/orders/purchase_bundle"])
	require.True(t, routes["POST /api/v1/account/save_card"])
	require.True(t, routes["POST /api/v1/account/set_autopay"])
	require.True(t, routes["GET /api/v1/account/notifications"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/admin")
	RegisterAdminRoutes(g, nil, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/list_services"])
	require.True(t, routes["POST /api/v1/admin/list_notifications"])
	require.True(t, routes["POST /api/v1/admin/update_service_status"])
	require.True(t, routes["POST /api/v1/admin/run_job"])
}

func TestRegisterVerificationRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterVerificationRoutes(g, nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/v1/verify/:dot_number"])
}
