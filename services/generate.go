package services

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/panyam/connectus/archive"
	"github.com/panyam/connectus/codegen"
	"github.com/panyam/connectus/diagram"
)

// GeneratorService runs the code generator over stored diagrams and hands
// the resulting tree to the packager. Each call takes its own snapshot;
// there is no state shared between generation requests.
type GeneratorService struct {
	diagrams *DiagramService
	packager archive.Packager
}

func NewGeneratorService(diagrams *DiagramService, packager archive.Packager) *GeneratorService {
	if packager == nil {
		packager = archive.NewZipPackager()
	}
	return &GeneratorService{diagrams: diagrams, packager: packager}
}

// GenerateTree produces the per-node file tree for a snapshot.
func (s *GeneratorService) GenerateTree(d *diagram.Diagram) (map[string]string, error) {
	files, err := codegen.Assemble(d)
	if err != nil {
		slog.Error("Code generation failed", "diagram", d.Name, "error", err)
		return nil, status.Error(codes.Internal, "Code generation failed")
	}
	tree := make(map[string]string, len(files))
	for _, f := range files {
		tree[f.Path] = f.Content
	}
	return tree, nil
}

// GenerateArchive loads a stored diagram, generates every node's
// artifacts, and packages them as one downloadable blob. The tree is built
// fully in memory before packaging, so a failure never leaves a partial
// result behind.
func (s *GeneratorService) GenerateArchive(ctx context.Context, id string) (filename string, blob []byte, err error) {
	d, err := s.diagrams.LoadDiagram(ctx, id)
	if err != nil {
		return "", nil, err
	}
	tree, err := s.GenerateTree(d)
	if err != nil {
		return "", nil, err
	}
	blob, err = s.packager.Package(tree)
	if err != nil {
		slog.Error("Packaging failed", "diagram", id, "error", err)
		return "", nil, status.Error(codes.Internal, "Packaging the generated project failed")
	}
	filename = codegen.ArchiveName(d)
	slog.Info("Generated project archive", "diagram", id, "filename", filename, "bytes", len(blob))
	return filename, blob, nil
}
