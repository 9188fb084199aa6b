package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/dashboard"
	"github.com/launchdash/launchdash/dataset"
	"github.com/launchdash/launchdash/engine"
	"github.com/launchdash/launchdash/render"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()

	logger := quietLogger()
	ds, err := dataset.Load(context.Background(), "../dataset/testdata/launches.csv", dataset.WithLogger(logger))
	require.NoError(t, err)
	dash := dashboard.New(ds, dashboard.WithLogger(logger))
	return New(dash, render.NewRenderer(480, 360), opts, logger)
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestIndex(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := get(t, h, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "SpaceX Launch Records Dashboard")

	rec = get(t, h, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndLayout(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := get(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 18.0, health["launches"])
	assert.Equal(t, 4.0, health["sites"])
	payload := health["payload"].(map[string]any)
	assert.Equal(t, 18.0, payload["count"])
	assert.Equal(t, 9600.0, payload["max"])

	rec = get(t, h, "/api/layout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	layout := decode[dashboard.Layout](t, rec)
	assert.Equal(t, dashboard.SiteDropdownID, layout.Dropdown.ID)
	assert.Len(t, layout.Dropdown.Options, 5)
	assert.Equal(t, [2]float64{0, 9600}, layout.Slider.Value)
}

func TestChartAPI(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	t.Run("pie defaults to all sites", func(t *testing.T) {
		rec := get(t, h, "/api/charts/success-pie-chart", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[engine.Result](t, rec)
		assert.Equal(t, "Total Success Launches by Site", result.ChartConfig.Title)
		assert.Len(t, result.ChartConfig.Series[0].Data, 4)
	})

	t.Run("scatter with site and range", func(t *testing.T) {
		rec := get(t, h, "/api/charts/success-payload-scatter-chart?site=CCAFS+LC-40&low=2500&high=5000", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[engine.Result](t, rec)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("scatter default range excludes the bounds", func(t *testing.T) {
		rec := get(t, h, "/api/charts/success-payload-scatter-chart", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[engine.Result](t, rec)
		assert.Equal(t, 14, result.Count)
	})

	t.Run("unknown chart", func(t *testing.T) {
		rec := get(t, h, "/api/charts/histogram", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decode[errorResponse](t, rec)
		assert.Contains(t, body.Error, "unknown output")
		assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
	})

	t.Run("inverted range", func(t *testing.T) {
		rec := get(t, h, "/api/charts/success-payload-scatter-chart?low=5000&high=100", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad number", func(t *testing.T) {
		for _, q := range []string{"low=abc", "high=NaN", "low=Inf"} {
			rec := get(t, h, "/api/charts/success-payload-scatter-chart?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

func TestSitesAPI(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := get(t, h, "/api/sites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[engine.Result](t, rec)
	assert.Equal(t, "table", result.Type)
	assert.Len(t, result.TableData.Rows, 4)
}

func TestChartImages(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := get(t, h, "/charts/success-pie-chart.svg?site=KSC+LC-39A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeSVG, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = get(t, h, "/charts/success-payload-scatter-chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypePNG, rec.Header().Get("Content-Type"))

	rec = get(t, h, "/charts/success-pie-chart.png?site=Nowhere", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, render.ContentTypeSVG, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "No data")

	rec = get(t, h, "/charts/success-pie-chart.gif", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/charts/success-pie-chart", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/charts/other.svg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := get(t, h, "/healthz", nil)
	id, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	incoming := uuid.NewString()
	rec = get(t, h, "/healthz", http.Header{RequestIDHeader: {incoming}})
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	rec = get(t, h, "/healthz", http.Header{RequestIDHeader: {"not-an-id"}})
	assert.NotEqual(t, "not-an-id", rec.Header().Get(RequestIDHeader))
}

func TestCompression(t *testing.T) {
	h := newTestServer(t, Options{Compression: true}).Handler()

	rec := get(t, h, "/api/layout", http.Header{"Accept-Encoding": {"gzip, br"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))

	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(rec.Body.Bytes())))
	require.NoError(t, err)
	var layout dashboard.Layout
	require.NoError(t, json.Unmarshal(body, &layout))
	assert.Equal(t, "SpaceX Launch Records Dashboard", layout.Title.Text)

	rec = get(t, h, "/api/layout", http.Header{"Accept-Encoding": {"gzip"}})
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = get(t, h, "/api/layout", http.Header{"Accept-Encoding": {"br;q=0"}})
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestAcceptsBrotli(t *testing.T) {
	assert.True(t, acceptsBrotli("br"))
	assert.True(t, acceptsBrotli("gzip, deflate, br"))
	assert.True(t, acceptsBrotli("BR;q=0.5"))
	assert.False(t, acceptsBrotli("br;q=0"))
	assert.False(t, acceptsBrotli("gzip"))
	assert.False(t, acceptsBrotli(""))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, Options{ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
