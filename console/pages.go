package console

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/panyam/templar"

	"github.com/panyam/connectus/services"
)

// PagesHandler serves the server-rendered console pages
type PagesHandler struct {
	mux           *http.ServeMux
	templateGroup *templar.TemplateGroup
	diagrams      *services.DiagramService
	session       *scs.SessionManager
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(templateGroup *templar.TemplateGroup, diagrams *services.DiagramService, session *scs.SessionManager) *PagesHandler {
	h := &PagesHandler{
		mux:           http.NewServeMux(),
		templateGroup: templateGroup,
		diagrams:      diagrams,
		session:       session,
	}
	h.setupRoutes()
	return h
}

func (h *PagesHandler) Handler() http.Handler {
	return h.mux
}

func (h *PagesHandler) setupRoutes() {
	h.mux.HandleFunc("GET /diagrams", h.handleListing)
	h.mux.HandleFunc("GET /diagrams/{id}", h.handleEditor)
	h.mux.HandleFunc("POST /diagrams/new", h.handleCreate)
	h.mux.HandleFunc("POST /diagrams/{id}/delete", h.handleDelete)
}

// handleListing renders the diagram library page
func (h *PagesHandler) handleListing(w http.ResponseWriter, r *http.Request) {
	resp, err := h.diagrams.ListDiagrams(r.Context(), services.ListDiagramsRequest{PageSize: 100})
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list diagrams: %v", err), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Title":    "Diagrams",
		"PageType": "diagram-listing",
		"Diagrams": resp.Items,
		"Flash":    h.session.PopString(r.Context(), "flash"),
	}

	templates := h.templateGroup.MustLoad("diagrams/listing.html", "")
	if err := h.templateGroup.RenderHtmlTemplate(w, templates[0], "", data, nil); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render page: %v", err), http.StatusInternalServerError)
		return
	}
}

// handleEditor renders the editor page for one diagram
func (h *PagesHandler) handleEditor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	info, err := h.diagrams.GetDiagram(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	doc, err := h.diagrams.GetDocument(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.session.Put(r.Context(), "lastDiagram", id)

	data := map[string]interface{}{
		"Title":    info.Name,
		"PageType": "diagram-editor",
		"Diagram":  info,
		"PageDataJSON": toJSON(map[string]interface{}{
			"diagramId": id,
			"document":  json.RawMessage(doc),
		}),
	}

	templates := h.templateGroup.MustLoad("diagrams/editor.html", "")
	if err := h.templateGroup.RenderHtmlTemplate(w, templates[0], "", data, nil); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render page: %v", err), http.StatusInternalServerError)
		return
	}
}

// handleCreate handles the new-diagram form submission
func (h *PagesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")
	description := r.FormValue("description")

	info, err := h.diagrams.CreateDiagram(r.Context(), "", name, description, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create diagram: %v", err), http.StatusInternalServerError)
		return
	}

	h.session.Put(r.Context(), "flash", fmt.Sprintf("Created diagram %q", info.Name))
	http.Redirect(w, r, fmt.Sprintf("/diagrams/%s", info.Id), http.StatusFound)
}

// handleDelete deletes a diagram and returns to the listing
func (h *PagesHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.diagrams.DeleteDiagram(r.Context(), id); err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete diagram: %v", err), http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), "flash", "Diagram deleted")
	http.Redirect(w, r, "/diagrams", http.StatusFound)
}

// toJSON marshals for embedding into a page; errors collapse to "{}"
func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
