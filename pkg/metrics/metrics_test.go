package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCartMutation(t *testing.T) {
	before := testutil.ToFloat64(cartMutations.WithLabelValues("add"))
	RecordCartMutation("add")
	RecordCartMutation("add")
	assert.Equal(t, before+2, testutil.ToFloat64(cartMutations.WithLabelValues("add")))
}

func TestActiveCartsGauge(t *testing.T) {
	before := testutil.ToFloat64(activeCarts)
	CartActorStarted()
	CartActorStarted()
	CartActorStopped()
	assert.Equal(t, before+1, testutil.ToFloat64(activeCarts))
}

func TestGinMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/carts/:cartId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/carts/:cartId", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/carts/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/carts/:cartId", "204")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordPersistFailure()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodcart_cart_persist_failures_total")
}
