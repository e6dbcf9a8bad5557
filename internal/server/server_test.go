package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/protocol"
)

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	reg := meta.NewRegistry()
	require.NoError(t, graph.RegisterStandardClasses(reg))
	w := graph.NewWorld()
	require.NoError(t, w.Add(&graph.Entity{
		Path:  "/World/Lamp1",
		Label: "Lamp1",
		Class: "Actor",
		Props: &graph.Actor{},
		Subs: []*graph.SubEntity{
			{Name: "Bulb", Class: "LightComponent", Root: true,
				Props: &graph.LightComponent{Intensity: 8}},
		},
	}))
	return New(protocol.NewDispatcher(graph.NewSession(w, reg)), opts...)
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, protocol.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/automation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestServeHTTP_GetProperty(t *testing.T) {
	h := newTestHandler(t)
	rec, resp := post(t, h, `{"op":"get_property","entity":{"label":"Lamp1"},"path":"Bulb.Intensity"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.True(t, resp.Success)
	require.Equal(t, 8.0, resp.Value)
}

func TestServeHTTP_SetProperty(t *testing.T) {
	h := newTestHandler(t)
	rec, resp := post(t, h, `{
		"op": "set_property",
		"entity": {"label": "Lamp1"},
		"path": "Bulb.Color",
		"value": {"r": 255}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, "(R=255,G=0,B=0,A=255)", resp.ConfirmedValue)
}

func TestServeHTTP_DomainFailureIsHTTP200(t *testing.T) {
	h := newTestHandler(t)
	rec, resp := post(t, h, `{"op":"get_property","entity":{"label":"Nobody"},"path":"Intensity"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, resp.Success)
	require.Equal(t, "NOT_FOUND", resp.ErrorCode)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/automation", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
}

func TestServeHTTP_MalformedBody(t *testing.T) {
	h := newTestHandler(t)
	rec, resp := post(t, h, `{"op":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "malformed request body")
}

func TestServeHTTP_BodyLimit(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(16))
	rec, resp := post(t, h, `{"op":"query_entities","criteria":{"label":"a very long pattern"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, resp.Success)
}

func TestServeHTTP_PrettyOutput(t *testing.T) {
	h := newTestHandler(t, WithPretty())
	rec, _ := post(t, h, `{"op":"query_entities"}`)
	require.Contains(t, rec.Body.String(), "\n  \"success\"")
}
