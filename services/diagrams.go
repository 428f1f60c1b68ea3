package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/panyam/connectus/diagram"
)

const defaultDiagramsBasePath = "./data/diagrams"

const (
	metadataFileName = "metadata.json"
	documentFileName = "diagram.json"
)

// DiagramInfo is the stored metadata for one diagram, kept next to the
// document itself.
type DiagramInfo struct {
	Id             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalizedName"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// --- DiagramService struct holds configuration and state ---

// DiagramService is the filesystem-backed diagram library: one directory
// per diagram holding metadata.json and the nodes/edges document.
type DiagramService struct {
	basePath string
	mutexMap sync.Map // Mutex map keyed by diagram ID
}

// --- NewDiagramService Constructor ---
func NewDiagramService(basePath string) *DiagramService {
	if basePath == "" {
		basePath = defaultDiagramsBasePath
	}
	out := &DiagramService{basePath: basePath}
	if err := ensureDir(out.basePath); err != nil {
		log.Fatalf("Could not create base diagrams directory '%s': %v", basePath, err)
	}
	return out
}

// --- Filesystem Path Helpers ---

func (s *DiagramService) getDiagramPath(id string) string {
	return filepath.Join(s.basePath, id)
}

func (s *DiagramService) getMetadataPath(id string) string {
	return filepath.Join(s.getDiagramPath(id), metadataFileName)
}

func (s *DiagramService) getDocumentPath(id string) string {
	return filepath.Join(s.getDiagramPath(id), documentFileName)
}

func (s *DiagramService) getDiagramMutex(id string) *sync.Mutex {
	actual, _ := s.mutexMap.LoadOrStore(id, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// sanitizeId keeps ids usable as directory names. Anything traversal-like
// is rejected up front.
func sanitizeId(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "Diagram id cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("Invalid diagram id '%s'", id))
	}
	return id, nil
}

func (s *DiagramService) readMetadata(id string) (*DiagramInfo, error) {
	jsonData, err := os.ReadFile(s.getMetadataPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Error(codes.NotFound, fmt.Sprintf("Diagram with id '%s' not found", id))
		}
		slog.Error("Failed to read diagram metadata", "id", id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to read diagram metadata")
	}
	var info DiagramInfo
	if err := json.Unmarshal(jsonData, &info); err != nil {
		slog.Error("Failed to unmarshal diagram metadata", "id", id, "error", err)
		return nil, status.Error(codes.DataLoss, fmt.Sprintf("Metadata for diagram '%s' is corrupted", id))
	}
	return &info, nil
}

func (s *DiagramService) writeMetadata(info *DiagramInfo) error {
	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return status.Error(codes.Internal, "Failed to marshal diagram metadata")
	}
	if err := os.WriteFile(s.getMetadataPath(info.Id), jsonData, 0644); err != nil {
		slog.Error("Failed to write diagram metadata", "id", info.Id, "error", err)
		return status.Error(codes.Internal, "Failed to write diagram metadata")
	}
	return nil
}

// --- CRUD operations ---

// CreateDiagram stores a new diagram. An empty id gets a generated one; an
// empty document starts as an empty nodes/edges model.
func (s *DiagramService) CreateDiagram(ctx context.Context, id, name, description string, document []byte) (*DiagramInfo, error) {
	slog.Info("CreateDiagram Request", "id", id, "name", name)

	if strings.TrimSpace(name) == "" {
		return nil, status.Error(codes.InvalidArgument, "Diagram name cannot be empty")
	}
	if id == "" {
		id = uuid.NewString()
		slog.Debug("Generated diagram id", "id", id)
	}
	id, err := sanitizeId(id)
	if err != nil {
		return nil, err
	}

	if len(document) == 0 {
		document, err = diagram.Marshal(diagram.New(name))
		if err != nil {
			return nil, status.Error(codes.Internal, "Failed to build empty diagram document")
		}
	} else if _, err := diagram.Unmarshal(document); err != nil {
		slog.Warn("Rejecting unparseable diagram document", "id", id, "error", err)
		return nil, status.Error(codes.InvalidArgument, "Diagram document could not be parsed")
	}

	mutex := s.getDiagramMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	diagramPath := s.getDiagramPath(id)
	if _, err := os.Stat(diagramPath); err == nil {
		slog.Warn("Diagram already exists", "id", id)
		return nil, status.Error(codes.AlreadyExists, fmt.Sprintf("Diagram with id '%s' already exists", id))
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Error("Error checking diagram path", "id", id, "path", diagramPath, "error", err)
		return nil, status.Error(codes.Internal, "Failed to check diagram existence")
	}

	if err := ensureDir(diagramPath); err != nil {
		return nil, status.Error(codes.Internal, "Failed to create diagram directory")
	}

	now := time.Now().UTC()
	info := &DiagramInfo{
		Id:             id,
		Name:           name,
		NormalizedName: strings.ToLower(removeAccents(name)),
		Description:    description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.writeMetadata(info); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.getDocumentPath(id), document, 0644); err != nil {
		slog.Error("Failed to write diagram document", "id", id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to write diagram document")
	}

	slog.Info("Successfully created diagram", "id", id, "name", name)
	return info, nil
}

// GetDiagram returns the stored metadata.
func (s *DiagramService) GetDiagram(ctx context.Context, id string) (*DiagramInfo, error) {
	id, err := sanitizeId(id)
	if err != nil {
		return nil, err
	}
	return s.readMetadata(id)
}

// GetDocument returns the raw nodes/edges document bytes.
func (s *DiagramService) GetDocument(ctx context.Context, id string) ([]byte, error) {
	id, err := sanitizeId(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.getDocumentPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Error(codes.NotFound, fmt.Sprintf("Diagram with id '%s' not found", id))
		}
		slog.Error("Failed to read diagram document", "id", id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to read diagram document")
	}
	return data, nil
}

// LoadDiagram decodes the stored document into the model, named after the
// stored metadata.
func (s *DiagramService) LoadDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	info, err := s.GetDiagram(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := diagram.Load(info.Name, data)
	if err != nil {
		slog.Error("Stored diagram document no longer parses", "id", id, "error", err)
		return nil, status.Error(codes.DataLoss, fmt.Sprintf("Document for diagram '%s' is corrupted", id))
	}
	return d, nil
}

// UpdateDiagram replaces the document, and optionally the name and
// description, of an existing diagram.
func (s *DiagramService) UpdateDiagram(ctx context.Context, id, name, description string, document []byte) (*DiagramInfo, error) {
	slog.Info("UpdateDiagram Request", "id", id)
	id, err := sanitizeId(id)
	if err != nil {
		return nil, err
	}

	if len(document) > 0 {
		if _, err := diagram.Unmarshal(document); err != nil {
			slog.Warn("Rejecting unparseable diagram document", "id", id, "error", err)
			return nil, status.Error(codes.InvalidArgument, "Diagram document could not be parsed")
		}
	}

	mutex := s.getDiagramMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	info, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		info.Name = name
		info.NormalizedName = strings.ToLower(removeAccents(name))
	}
	if description != "" {
		info.Description = description
	}
	info.UpdatedAt = time.Now().UTC()

	if len(document) > 0 {
		if err := os.WriteFile(s.getDocumentPath(id), document, 0644); err != nil {
			slog.Error("Failed to write diagram document", "id", id, "error", err)
			return nil, status.Error(codes.Internal, "Failed to write diagram document")
		}
	}
	if err := s.writeMetadata(info); err != nil {
		return nil, err
	}
	slog.Info("Successfully updated diagram", "id", id)
	return info, nil
}

// DeleteDiagram removes the diagram directory and everything in it.
func (s *DiagramService) DeleteDiagram(ctx context.Context, id string) error {
	slog.Info("DeleteDiagram Request", "id", id)
	id, err := sanitizeId(id)
	if err != nil {
		return err
	}

	mutex := s.getDiagramMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	diagramPath := s.getDiagramPath(id)
	if _, err := os.Stat(diagramPath); errors.Is(err, os.ErrNotExist) {
		return status.Error(codes.NotFound, fmt.Sprintf("Diagram with id '%s' not found", id))
	}
	if err := os.RemoveAll(diagramPath); err != nil {
		slog.Error("Failed to delete diagram", "id", id, "error", err)
		return status.Error(codes.Internal, "Failed to delete diagram")
	}
	s.mutexMap.Delete(id)
	slog.Info("Successfully deleted diagram", "id", id)
	return nil
}

// ListDiagramsRequest carries the listing parameters.
type ListDiagramsRequest struct {
	OrderBy    string // "recent" (default), "name", "created"
	PageOffset int
	PageSize   int
}

// ListDiagramsResponse is one page of the library.
type ListDiagramsResponse struct {
	Items        []*DiagramInfo
	TotalResults int
	HasMore      bool
}

// ListDiagrams walks the library directory, sorts, and paginates.
func (s *DiagramService) ListDiagrams(ctx context.Context, req ListDiagramsRequest) (*ListDiagramsResponse, error) {
	slog.Info("ListDiagrams Request", "req", req)

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		slog.Error("Failed to read diagrams directory", "path", s.basePath, "error", err)
		return nil, status.Error(codes.Internal, "Failed to list diagrams")
	}

	var allMetadata []*DiagramInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		info, readErr := s.readMetadata(id)
		if readErr != nil {
			slog.Warn("Skipping unreadable diagram during list", "id", id, "error", readErr)
			continue
		}
		if info.Id != id {
			slog.Warn("Mismatch between directory name and metadata id", "dirName", id, "metadataId", info.Id)
			continue
		}
		allMetadata = append(allMetadata, info)
	}

	sort.Slice(allMetadata, func(i, j int) bool {
		m1 := allMetadata[i]
		m2 := allMetadata[j]
		switch req.OrderBy {
		case "name":
			return m1.NormalizedName < m2.NormalizedName
		case "created":
			return m1.CreatedAt.After(m2.CreatedAt)
		case "recent", "":
			return m1.UpdatedAt.After(m2.UpdatedAt)
		default:
			return m1.UpdatedAt.After(m2.UpdatedAt)
		}
	})

	totalResults := len(allMetadata)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	start := max(req.PageOffset, 0)
	hasMore := false
	if start >= totalResults {
		allMetadata = nil
	} else {
		end := start + pageSize
		if end >= totalResults {
			end = totalResults
		} else {
			hasMore = true
		}
		allMetadata = allMetadata[start:end]
	}

	resp := &ListDiagramsResponse{
		Items:        allMetadata,
		TotalResults: totalResults,
		HasMore:      hasMore,
	}
	slog.Info("Successfully listed diagrams", "responseCount", len(resp.Items), "total", totalResults)
	return resp, nil
}
