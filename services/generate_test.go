package services

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/panyam/connectus/diagram"
)

func storedPingPong(t *testing.T, s *DiagramService) {
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
		ID: "2", Name: "PongReceiver", Node: "NodeB", ComponentID: 2,
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
	_, err = s.CreateDiagram(context.Background(), "pp", "PingPong", "", doc)
	require.NoError(t, err)
}

func TestGenerateArchive(t *testing.T) {
	diagrams := testService(t)
	storedPingPong(t, diagrams)
	gen := NewGeneratorService(diagrams, nil)

	filename, blob, err := gen.GenerateArchive(context.Background(), "pp")
	require.NoError(t, err, "generation over a valid stored diagram must succeed")
	assert.Equal(t, "pingpong_project.zip", filename)

	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err, "the blob must be a readable zip")

	var paths []string
	for _, f := range r.File {
		paths = append(paths, f.Name)
	}
	assert.Contains(t, paths, "NodeA/main.cpp")
	assert.Contains(t, paths, "NodeA/edroom_glue/include/edroom_glue/edroomdeployment.h")
	assert.Contains(t, paths, "NodeA/edroom_glue/src/edroomdeployment.cpp")
	assert.Contains(t, paths, "NodeB/main.cpp")
	assert.Len(t, paths, 6, "three artifacts per logical node")
}

func TestGenerateArchiveMissingDiagram(t *testing.T) {
	gen := NewGeneratorService(testService(t), nil)
	_, _, err := gen.GenerateArchive(context.Background(), "nope")
	assert.Equal(t, codes.NotFound, status.Code(err))
}
