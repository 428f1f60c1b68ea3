package console

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/panyam/goutils/fn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/panyam/connectus/services"
	"github.com/panyam/connectus/viz"
)

// ConnectusApi is the REST surface over the diagram library and the code
// generator.
type ConnectusApi struct {
	mux       *http.ServeMux
	diagrams  *services.DiagramService
	generator *services.GeneratorService
	ws        *DiagramWSHandler
}

func NewConnectusApi(diagrams *services.DiagramService, generator *services.GeneratorService, ws *DiagramWSHandler) *ConnectusApi {
	api := &ConnectusApi{
		mux:       http.NewServeMux(),
		diagrams:  diagrams,
		generator: generator,
		ws:        ws,
	}
	api.mux.HandleFunc("GET /diagrams", api.listDiagrams)
	api.mux.HandleFunc("POST /diagrams", api.createDiagram)
	api.mux.HandleFunc("GET /diagrams/{id}", api.getDiagram)
	api.mux.HandleFunc("PUT /diagrams/{id}", api.updateDiagram)
	api.mux.HandleFunc("DELETE /diagrams/{id}", api.deleteDiagram)
	api.mux.HandleFunc("POST /diagrams/{id}/validate", api.validateDiagram)
	api.mux.HandleFunc("GET /diagrams/{id}/generate", api.generateProject)
	api.mux.HandleFunc("GET /diagrams/{id}/export", api.exportDiagram)
	return api
}

func (api *ConnectusApi) Handler() http.Handler {
	return api.mux
}

// --- wire shapes ---

type diagramSummary struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toSummary(info *services.DiagramInfo) diagramSummary {
	return diagramSummary{
		Id:          info.Id,
		Name:        info.Name,
		Description: info.Description,
		CreatedAt:   info.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   info.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type diagramPayload struct {
	Id          string          `json:"id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
}

// writeError converts the service's status errors into HTTP responses the
// same way the gateway would.
func writeError(w http.ResponseWriter, err error) {
	s := status.Convert(err)
	httpStatus := runtime.HTTPStatusFromCode(s.Code())
	slog.Warn("api error", "code", s.Code(), "http_status", httpStatus, "msg", s.Message())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   s.Code().String(),
		"message": s.Message(),
		"code":    int(s.Code()),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// --- handlers ---

func (api *ConnectusApi) listDiagrams(w http.ResponseWriter, r *http.Request) {
	req := services.ListDiagramsRequest{OrderBy: r.URL.Query().Get("orderBy")}
	fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &req.PageOffset)
	fmt.Sscanf(r.URL.Query().Get("pageSize"), "%d", &req.PageSize)

	resp, err := api.diagrams.ListDiagrams(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"diagrams":     fn.Map(resp.Items, toSummary),
		"totalResults": resp.TotalResults,
		"hasMore":      resp.HasMore,
	})
}

func (api *ConnectusApi) createDiagram(w http.ResponseWriter, r *http.Request) {
	var payload diagramPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, status.Error(codes.InvalidArgument, "Request body could not be parsed"))
		return
	}
	info, err := api.diagrams.CreateDiagram(r.Context(), payload.Id, payload.Name, payload.Description, payload.Document)
	if err != nil {
		writeError(w, err)
		return
	}
	api.ws.Broadcast(DiagramWSMessage{Type: "diagramCreated", Data: toSummary(info)})
	writeJSON(w, http.StatusCreated, toSummary(info))
}

func (api *ConnectusApi) getDiagram(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	info, err := api.diagrams.GetDiagram(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := api.diagrams.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"diagram":  toSummary(info),
		"document": json.RawMessage(doc),
	})
}

func (api *ConnectusApi) updateDiagram(w http.ResponseWriter, r *http.Request) {
	var payload diagramPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, status.Error(codes.InvalidArgument, "Request body could not be parsed"))
		return
	}
	id := r.PathValue("id")
	info, err := api.diagrams.UpdateDiagram(r.Context(), id, payload.Name, payload.Description, payload.Document)
	if err != nil {
		writeError(w, err)
		return
	}
	api.ws.Broadcast(DiagramWSMessage{Type: "diagramUpdated", Data: toSummary(info)})
	writeJSON(w, http.StatusOK, toSummary(info))
}

func (api *ConnectusApi) deleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := api.diagrams.DeleteDiagram(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	api.ws.Broadcast(DiagramWSMessage{Type: "diagramDeleted", Data: map[string]string{"id": id}})
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (api *ConnectusApi) validateDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := api.diagrams.LoadDiagram(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ec := d.Validate()
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": !ec.HasErrors(),
		"errors": fn.Map(ec.Errors, func(e error) string {
			return e.Error()
		}),
	})
}

func (api *ConnectusApi) generateProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	filename, blob, err := api.generator.GenerateArchive(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	api.ws.Broadcast(DiagramWSMessage{Type: "projectGenerated", Data: map[string]string{"id": id, "filename": filename}})

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		slog.Error("Failed streaming archive", "id", id, "error", err)
	}
}

func (api *ConnectusApi) exportDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := api.diagrams.LoadDiagram(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var gen viz.DiagramGenerator
	format := r.URL.Query().Get("format")
	switch format {
	case "dot":
		gen = &viz.DotGenerator{}
	case "mermaid", "":
		gen = &viz.MermaidGenerator{}
	default:
		writeError(w, status.Error(codes.InvalidArgument, fmt.Sprintf("Unknown export format '%s'", format)))
		return
	}

	nodes, edges := viz.Build(d)
	out, err := gen.Generate(d.Name, nodes, edges)
	if err != nil {
		writeError(w, status.Error(codes.Internal, "Export rendering failed"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, out)
}
