package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panyam/connectus/diagram"
)

func TestNodesPartition(t *testing.T) {
	d := pingPong(t)
	assert.Equal(t, []string{"NodeA"}, Nodes(d))

	d.Component("2").Node = "NodeB"
	assert.Equal(t, []string{"NodeA", "NodeB"}, Nodes(d), "nodes come back in first-appearance order")

	empty := diagram.New("empty")
	assert.Equal(t, []string{DefaultNode}, Nodes(empty), "a diagram with no components deploys on the default node")
}

func TestAssembleLayout(t *testing.T) {
	d := pingPong(t)
	files, err := Assemble(d)
	assert.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.NotEmpty(t, f.Content, "%s must not be empty", f.Path)
	}
	assert.Equal(t, []string{
		"NodeA/main.cpp",
		"NodeA/edroom_glue/include/edroom_glue/edroomdeployment.h",
		"NodeA/edroom_glue/src/edroomdeployment.cpp",
	}, paths)
}

func TestAssembleMultiNode(t *testing.T) {
	d := pingPong(t)
	d.Component("2").Node = "NodeB"

	files, err := Assemble(d)
	assert.NoError(t, err)
	assert.Len(t, files, 6, "three artifacts per node")

	byPath := map[string]string{}
	for _, f := range files {
		byPath[f.Path] = f.Content
	}

	// Each node sees the whole diagram but with its own locality view.
	assert.Contains(t, byPath["NodeA/edroom_glue/include/edroom_glue/edroomdeployment.h"], "RCCPongReceiver")
	assert.Contains(t, byPath["NodeB/edroom_glue/include/edroom_glue/edroomdeployment.h"], "RPingSender")
	assert.Contains(t, byPath["NodeB/edroom_glue/include/edroom_glue/edroomdeployment.h"], "CCPongReceiver")
}

func TestArchiveName(t *testing.T) {
	d := diagram.New("My Satellite Bus")
	assert.Equal(t, "mysatellitebus_project.zip", ArchiveName(d))
	assert.Equal(t, "connectus_project.zip", ArchiveName(diagram.New("")))
}
