package inbound

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchmap/internal/selection"
)

type recorder struct{ msgs []selection.Message }

func (r *recorder) handle(m selection.Message) { r.msgs = append(r.msgs, m) }

func TestReadLines(t *testing.T) {
	input := strings.Join([]string{
		`{"selected":[{"minLongitude":1,"maxLongitude":2,"minLatitude":3,"maxLatitude":4,"title":"a"}]}`,
		``,
		`{not json`,
		`{"selected":[]}`,
		`{"other":true}`,
	}, "\n")

	var rec recorder
	require.NoError(t, ReadLines(context.Background(), strings.NewReader(input), "stdin", rec.handle))
	require.Len(t, rec.msgs, 3)
	assert.Equal(t, "stdin", rec.msgs[0].Source)
	require.Len(t, rec.msgs[0].Selected, 1)
	assert.Equal(t, "a", rec.msgs[0].Selected[0].Title)
	assert.True(t, rec.msgs[1].Empty())
	assert.True(t, rec.msgs[2].Empty())
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var rec recorder
	err := ReadLines(ctx, strings.NewReader("{\"selected\":[]}\n"), "stdin", rec.handle)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.msgs)
}

func TestPostSelection(t *testing.T) {
	var rec recorder
	app := NewApp(rec.handle)

	body := `{"selected":[{"minLongitude":10,"maxLongitude":10,"minLatitude":50,"maxLatitude":50,"color":"0xff0000"},{"title":"no bounds"}]}`
	req := httptest.NewRequest("POST", "/v1/selection", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var got ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 1, got.Accepted)
	assert.Equal(t, 1, got.Rejected)

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "http", rec.msgs[0].Source)
	assert.Equal(t, "0xff0000", rec.msgs[0].Selected[0].Color)
}

func TestPostSelectionMalformed(t *testing.T) {
	var rec recorder
	app := NewApp(rec.handle)

	req := httptest.NewRequest("POST", "/v1/selection", strings.NewReader("{"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, rec.msgs)
}

func TestHealthAndMetrics(t *testing.T) {
	app := NewApp(func(selection.Message) {})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "searchmap_http_requests_total")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := NewApp(func(selection.Message) {})
	resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
