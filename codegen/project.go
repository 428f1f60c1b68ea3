package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/panyam/connectus/diagram"
)

// Fixed artifact names inside each node's tree.
const (
	ProjectFileName      = "main.cpp"
	DeploymentHeaderName = "edroomdeployment.h"
	DeploymentSourceName = "edroomdeployment.cpp"
)

// ProjectFile is one generated source file addressed by its slash-separated
// path inside the project tree.
type ProjectFile struct {
	Path    string
	Content string
}

// Nodes returns the distinct logical nodes the diagram deploys to, in
// first-appearance order. A diagram with no components still deploys a
// minimal project on the default node.
func Nodes(d *diagram.Diagram) []string {
	var nodes []string
	seen := make(map[string]bool)
	for _, c := range d.Components {
		n := EffectiveNode(c)
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		nodes = []string{DefaultNode}
	}
	return nodes
}

// AssembleNode generates the three artifacts for one node:
//
//	<node>/main.cpp
//	<node>/edroom_glue/include/edroom_glue/edroomdeployment.h
//	<node>/edroom_glue/src/edroomdeployment.cpp
func AssembleNode(d *diagram.Diagram, node string) ([]ProjectFile, error) {
	gen := NewDeployment(d, node)
	header, err := gen.Header()
	if err != nil {
		return nil, fmt.Errorf("deployment header for node %s: %w", node, err)
	}
	source, err := gen.Source()
	if err != nil {
		return nil, fmt.Errorf("deployment source for node %s: %w", node, err)
	}
	mainFile, err := gen.Main()
	if err != nil {
		return nil, fmt.Errorf("project file for node %s: %w", node, err)
	}
	return []ProjectFile{
		{Path: path.Join(node, ProjectFileName), Content: mainFile},
		{Path: path.Join(node, "edroom_glue", "include", "edroom_glue", DeploymentHeaderName), Content: header},
		{Path: path.Join(node, "edroom_glue", "src", DeploymentSourceName), Content: source},
	}, nil
}

// Assemble generates the complete multi-node project. Either every node
// assembles or the whole run fails; callers never see a partial tree.
func Assemble(d *diagram.Diagram) ([]ProjectFile, error) {
	var files []ProjectFile
	for _, node := range Nodes(d) {
		nodeFiles, err := AssembleNode(d, node)
		if err != nil {
			return nil, err
		}
		files = append(files, nodeFiles...)
	}
	return files, nil
}

// ArchiveName derives the download name for the packaged project from the
// diagram name.
func ArchiveName(d *diagram.Diagram) string {
	name := strings.ToLower(stripSpace(d.Name))
	if name == "" {
		name = "connectus"
	}
	return name + "_project.zip"
}
