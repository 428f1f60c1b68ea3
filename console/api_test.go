package console

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/connectus/diagram"
	"github.com/panyam/connectus/services"
)

func testApi(t *testing.T) *ConnectusApi {
	t.Helper()
	diagrams := services.NewDiagramService(t.TempDir())
	generator := services.NewGeneratorService(diagrams, nil)
	ws := &DiagramWSHandler{clients: make(map[string]*DiagramWSConn)}
	return NewConnectusApi(diagrams, generator, ws)
}

func pingPongDoc(t *testing.T) []byte {
	t.Helper()
	d := diagram.New("PingPong")
	require.NoError(t, d.AddComponent(&diagram.Component{
		ID: "1", Name: "PingSender", Node: "NodeA", ComponentID: 1,
		MaxMessages: 10, StackSize: 2048, Priority: diagram.PrioNormal,
		Ports: []diagram.Port{{
			ID: "1", Name: "POut", Type: diagram.PortCommunication,
			Subtype: diagram.SubtypeNominal, ProtocolName: "PingProtocol",
		}},
	}))
	require.NoError(t, d.AddComponent(&diagram.Component{
		ID: "2", Name: "PongReceiver", Node: "NodeA", ComponentID: 2,
		MaxMessages: 5, StackSize: 1024, Priority: diagram.PrioNormal,
		Ports: []diagram.Port{{
			ID: "1", Name: "PIn", Type: diagram.PortCommunication,
			Subtype: diagram.SubtypeConjugate, ProtocolName: "PingProtocol",
		}},
	}))
	require.NoError(t, d.Connect(diagram.Connection{
		SourceComponentID: "1", SourcePortID: "1",
		TargetComponentID: "2", TargetPortID: "1",
	}))
	require.NoError(t, d.SetTop("1"))
	doc, err := diagram.Marshal(d)
	require.NoError(t, err)
	return doc
}

func doRequest(t *testing.T, api *ConnectusApi, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}

func createPingPong(t *testing.T, api *ConnectusApi) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":       "pp",
		"name":     "PingPong",
		"document": json.RawMessage(pingPongDoc(t)),
	})
	require.NoError(t, err)
	w := doRequest(t, api, "POST", "/diagrams", string(payload))
	require.Equal(t, http.StatusCreated, w.Code, "fixture creation must succeed: %s", w.Body.String())
}

func TestApiCreateAndGet(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	w := doRequest(t, api, "GET", "/diagrams/pp", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Diagram  diagramSummary  `json:"diagram"`
		Document json.RawMessage `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pp", resp.Diagram.Id)
	assert.Equal(t, "PingPong", resp.Diagram.Name)

	d, err := diagram.Unmarshal(resp.Document)
	require.NoError(t, err, "returned document must round-trip")
	assert.Len(t, d.Components, 2)
}

func TestApiCreateRejectsBadDocument(t *testing.T) {
	api := testApi(t)
	w := doRequest(t, api, "POST", "/diagrams", `{"name":"Broken","document":{"components":"nope"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiGetMissing(t *testing.T) {
	api := testApi(t)
	w := doRequest(t, api, "GET", "/diagrams/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NotFound", resp["error"])
}

func TestApiList(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	w := doRequest(t, api, "GET", "/diagrams", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Diagrams     []diagramSummary `json:"diagrams"`
		TotalResults int              `json:"totalResults"`
		HasMore      bool             `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalResults)
	require.Len(t, resp.Diagrams, 1)
	assert.Equal(t, "pp", resp.Diagrams[0].Id)
	assert.False(t, resp.HasMore)
}

func TestApiUpdateAndDelete(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	w := doRequest(t, api, "PUT", "/diagrams/pp", `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var summary diagramSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "Renamed", summary.Name)

	w = doRequest(t, api, "DELETE", "/diagrams/pp", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, api, "GET", "/diagrams/pp", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "deleted diagrams must be gone")
}

func TestApiValidate(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	w := doRequest(t, api, "POST", "/diagrams/pp/validate", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
}

func TestApiGenerate(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	w := doRequest(t, api, "GET", "/diagrams/pp/generate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pingpong_project.zip")

	blob := w.Body.Bytes()
	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err, "response body must be a readable zip")
	assert.Len(t, r.File, 3, "single-node diagram produces three artifacts")
}

func TestApiExport(t *testing.T) {
	api := testApi(t)
	createPingPong(t, api)

	t.Log("--- dot ---")
	w := doRequest(t, api, "GET", "/diagrams/pp/export?format=dot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "digraph")

	t.Log("--- mermaid is the default ---")
	w = doRequest(t, api, "GET", "/diagrams/pp/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD;")

	t.Log("--- unknown format ---")
	w = doRequest(t, api, "GET", "/diagrams/pp/export?format=png", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
