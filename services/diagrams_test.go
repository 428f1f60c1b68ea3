package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/panyam/connectus/diagram"
)

func testService(t *testing.T) *DiagramService {
	t.Helper()
	return NewDiagramService(t.TempDir())
}

func TestCreateAndGetDiagram(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	info, err := s.CreateDiagram(ctx, "d1", "Satellite Bus", "payload wiring", nil)
	require.NoError(t, err, "creating should not fail")
	assert.Equal(t, "d1", info.Id)
	assert.Equal(t, "satellite bus", info.NormalizedName)

	got, err := s.GetDiagram(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, info.Name, got.Name)

	d, err := s.LoadDiagram(ctx, "d1")
	require.NoError(t, err, "an empty document must load as an empty model")
	assert.Empty(t, d.Components)
	assert.Equal(t, "Satellite Bus", d.Name)
}

func TestCreateDiagramRejections(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	_, err := s.CreateDiagram(ctx, "", "", "", nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "empty name is rejected")

	_, err = s.CreateDiagram(ctx, "../escape", "Evil", "", nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "traversal ids are rejected")

	_, err = s.CreateDiagram(ctx, "d1", "First", "", nil)
	require.NoError(t, err)
	_, err = s.CreateDiagram(ctx, "d1", "Second", "", nil)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = s.CreateDiagram(ctx, "d2", "Broken", "", []byte("{not json"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "an unparseable document is one generic rejection")
}

func TestUpdateDiagramDocument(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	_, err := s.CreateDiagram(ctx, "d1", "Bus", "", nil)
	require.NoError(t, err)

	d := diagram.New("Bus")
	require.NoError(t, d.AddComponent(&diagram.Component{
		ID: "1", Name: "Controller", ComponentID: 1,
		MaxMessages: 10, StackSize: 2048, Priority: diagram.PrioNormal,
	}))
	doc, err := diagram.Marshal(d)
	require.NoError(t, err)

	info, err := s.UpdateDiagram(ctx, "d1", "", "", doc)
	require.NoError(t, err)
	assert.True(t, info.UpdatedAt.After(info.CreatedAt) || info.UpdatedAt.Equal(info.CreatedAt))

	loaded, err := s.LoadDiagram(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, loaded.Components, 1)
	assert.Equal(t, "Controller", loaded.Components[0].Name)
}

func TestDeleteDiagram(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	_, err := s.CreateDiagram(ctx, "d1", "Bus", "", nil)
	require.NoError(t, err)
	require.NoError(t, s.DeleteDiagram(ctx, "d1"))

	_, err = s.GetDiagram(ctx, "d1")
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, codes.NotFound, status.Code(s.DeleteDiagram(ctx, "d1")))
}

func TestListDiagrams(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "alpha", "Bravo"} {
		_, err := s.CreateDiagram(ctx, "", name, "", nil)
		require.NoError(t, err)
	}

	resp, err := s.ListDiagrams(ctx, ListDiagramsRequest{OrderBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalResults)
	assert.False(t, resp.HasMore)

	var names []string
	for _, item := range resp.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"alpha", "Bravo", "Charlie"}, names, "name ordering uses the normalized name")

	page, err := s.ListDiagrams(ctx, ListDiagramsRequest{OrderBy: "name", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	rest, err := s.ListDiagrams(ctx, ListDiagramsRequest{OrderBy: "name", PageOffset: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.False(t, rest.HasMore)
}
