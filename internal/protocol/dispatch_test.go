package protocol

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := meta.NewRegistry()
	require.NoError(t, graph.RegisterStandardClasses(reg))
	w := graph.NewWorld()
	require.NoError(t, w.Add(&graph.Entity{
		Path:     "/World/Lamp1",
		Label:    "Lamp1",
		Class:    "Actor",
		Tags:     []string{"Interactable"},
		Document: "/World",
		Props:    &graph.Actor{Mobility: "Static"},
		Subs: []*graph.SubEntity{
			{Name: "Bulb", Class: "LightComponent", Root: true,
				Props: &graph.LightComponent{Intensity: 8}},
		},
	}))
	require.NoError(t, w.Add(&graph.Entity{
		Path:  "/World/Door1",
		Label: "FrontDoor",
		Class: "Actor",
		Props: &graph.Actor{},
	}))
	return NewDispatcher(graph.NewSession(w, reg))
}

func TestDispatch_GetSet(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	set := d.Dispatch(ctx, Request{
		Op:     OpSetProperty,
		Entity: EntityRef{Label: "Lamp1"},
		Path:   "Bulb.Color",
		Value:  map[string]any{"r": 255.0},
	})
	require.True(t, set.Success)
	require.Equal(t, "(R=255,G=0,B=0,A=255)", set.ConfirmedValue)

	get := d.Dispatch(ctx, Request{
		Op:     OpGetProperty,
		Entity: EntityRef{Path: "/World/Lamp1"},
		Path:   "Bulb.Intensity",
	})
	require.True(t, get.Success)
	require.Equal(t, 8.0, get.Value)
}

func TestDispatch_FailureEnvelope(t *testing.T) {
	d := newTestDispatcher(t)
	cases := []struct {
		name     string
		req      Request
		wantCode string
	}{
		{"EmptyIdentifier",
			Request{Op: OpGetProperty, Path: "Intensity"},
			"INVALID_IDENTIFIER"},
		{"UnknownEntity",
			Request{Op: OpGetProperty, Entity: EntityRef{Label: "Nobody"}, Path: "Intensity"},
			"NOT_FOUND"},
		{"UnknownSub",
			Request{Op: OpGetProperty, Entity: EntityRef{Label: "Lamp1"}, Path: "Base.Intensity"},
			"SUBENTITY_NOT_FOUND"},
		{"UnknownField",
			Request{Op: OpGetProperty, Entity: EntityRef{Label: "Lamp1"}, Path: "Bulb.Wattage"},
			"FIELD_NOT_FOUND"},
		{"IndexOnScalar",
			Request{Op: OpGetProperty, Entity: EntityRef{Label: "Lamp1"}, Path: "Bulb.Intensity[0]"},
			"NOT_AN_ARRAY"},
		{"BadValue",
			Request{Op: OpSetProperty, Entity: EntityRef{Label: "Lamp1"}, Path: "Bulb.Intensity", Value: "loud"},
			"INVALID_VALUE"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := d.Dispatch(context.Background(), c.req)
			require.False(t, resp.Success)
			require.Equal(t, c.wantCode, resp.ErrorCode)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestDispatch_QueryEntities(t *testing.T) {
	d := newTestDispatcher(t)

	t.Run("All", func(t *testing.T) {
		resp := d.Dispatch(context.Background(), Request{Op: OpQueryEntities})
		require.True(t, resp.Success)
		require.Len(t, resp.Entities, 2)
	})
	t.Run("ByLabelPattern", func(t *testing.T) {
		resp := d.Dispatch(context.Background(), Request{
			Op:       OpQueryEntities,
			Criteria: &CriteriaSpec{Label: "*Door*"},
		})
		require.True(t, resp.Success)
		want := []EntitySummary{{Path: "/World/Door1", Label: "FrontDoor", Class: "Actor"}}
		if diff := cmp.Diff(want, resp.Entities); diff != "" {
			t.Fatalf("entities mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("NoMatchIsEmptySuccess", func(t *testing.T) {
		resp := d.Dispatch(context.Background(), Request{
			Op:       OpQueryEntities,
			Criteria: &CriteriaSpec{Class: "Spaceship"},
		})
		require.True(t, resp.Success)
		require.Empty(t, resp.Entities)
	})
}

func TestDispatch_DescribeEntity(t *testing.T) {
	d := newTestDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{
		Op:     OpDescribeEntity,
		Entity: EntityRef{Path: "/World/Lamp1"},
	})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Entity)
	require.Equal(t, "/World/Lamp1", resp.Entity.Path)
	require.Equal(t, "/World", resp.Entity.Document)
	require.Empty(t, resp.Entity.GUID)

	var names []string
	for _, f := range resp.Entity.Fields {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"Mobility", "Hidden"}, names)
	mobility := resp.Entity.Fields[0]
	require.Equal(t, "enum", mobility.Type)
	require.Equal(t, []string{"Static", "Stationary", "Movable"}, mobility.Enum)

	require.Len(t, resp.Entity.Components, 1)
	bulb := resp.Entity.Components[0]
	require.Equal(t, "Bulb", bulb.Name)
	require.Equal(t, "LightComponent", bulb.Class)
	require.True(t, bulb.Root)
	require.NotEmpty(t, bulb.Fields)
}

func TestDispatch_UnknownOp(t *testing.T) {
	d := newTestDispatcher(t)
	resp := d.Dispatch(context.Background(), Request{Op: "restart_editor"})
	require.False(t, resp.Success)
	require.Equal(t, "INVALID_VALUE", resp.ErrorCode)
	require.Contains(t, resp.Details["ops"], OpSetProperty)
}
