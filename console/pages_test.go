package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/connectus/services"
)

// testPages builds a pages handler over the real templates, wrapped in the
// session middleware the server applies in front of it.
func testPages(t *testing.T) (*services.DiagramService, http.Handler) {
	t.Helper()
	diagrams := services.NewDiagramService(t.TempDir())

	templates, err := SetupTemplates("../web/templates")
	require.NoError(t, err)

	session := scs.New()
	session.Lifetime = time.Hour
	pages := NewPagesHandler(templates, diagrams, session)
	return diagrams, session.LoadAndSave(pages.Handler())
}

func TestPagesListing(t *testing.T) {
	diagrams, handler := testPages(t)
	_, err := diagrams.CreateDiagram(context.Background(), "pp", "PingPong", "demo", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/diagrams", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "PingPong")
	assert.Contains(t, body, "/diagrams/pp", "listing links to the editor")
}

func TestPagesListingEmpty(t *testing.T) {
	_, handler := testPages(t)

	req := httptest.NewRequest("GET", "/diagrams", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No diagrams yet")
}

func TestPagesEditor(t *testing.T) {
	diagrams, handler := testPages(t)
	_, err := diagrams.CreateDiagram(context.Background(), "pp", "PingPong", "", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/diagrams/pp", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "PingPong")
	assert.Contains(t, body, "/api/diagrams/pp/generate", "editor exposes the generate action")
}

func TestPagesEditorMissing(t *testing.T) {
	_, handler := testPages(t)

	req := httptest.NewRequest("GET", "/diagrams/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPagesCreateForm(t *testing.T) {
	diagrams, handler := testPages(t)

	form := url.Values{"name": {"New Diagram"}, "description": {"from the form"}}
	req := httptest.NewRequest("POST", "/diagrams/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/diagrams/"), "create redirects into the editor, got %s", location)

	resp, err := diagrams.ListDiagrams(context.Background(), services.ListDiagramsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "New Diagram", resp.Items[0].Name)
}

func TestPagesDeleteForm(t *testing.T) {
	diagrams, handler := testPages(t)
	_, err := diagrams.CreateDiagram(context.Background(), "pp", "PingPong", "", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/diagrams/pp/delete", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/diagrams", w.Header().Get("Location"))

	_, err = diagrams.GetDiagram(context.Background(), "pp")
	assert.Error(t, err, "deleted diagram must be gone")
}
