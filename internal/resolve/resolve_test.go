package resolve

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
)

const lampGUID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

func newTestSession(t *testing.T) *graph.Session {
	t.Helper()
	w := graph.NewWorld()
	add := func(e *graph.Entity) {
		t.Helper()
		require.NoError(t, w.Add(e))
	}
	add(&graph.Entity{Path: "/World/Lamp1", Label: "Lamp1", Class: "PointLight",
		Tags: []string{"Interactable"}, Selected: true})
	add(&graph.Entity{Path: "/World/Lamp2", Label: "Lamp", Class: "PointLight"})
	add(&graph.Entity{Path: "/World/Lamp3", Label: "Lamp", Class: "SpotLight",
		Tags: []string{"Interactable", "Breakable"}})
	add(&graph.Entity{Path: "/World/Door1", Label: "FrontDoor", Class: "BP_Door_C"})
	lamp1, _ := w.ByPath("/World/Lamp1")
	lamp1.GUID = uuid.MustParse(lampGUID)
	return graph.NewSession(w, meta.NewRegistry())
}

func TestResolve(t *testing.T) {
	s := newTestSession(t)
	cases := []struct {
		name string
		id   Identifier
		want string // expected path
	}{
		{"ByPath", Identifier{Path: "/World/Lamp2"}, "/World/Lamp2"},
		{"ByLabel", Identifier{Label: "FrontDoor"}, "/World/Door1"},
		{"ByGUID", Identifier{GUID: lampGUID}, "/World/Lamp1"},
		{"ByTag", Identifier{Tag: "Breakable"}, "/World/Lamp3"},
		{"LabelCollisionFirstWins", Identifier{Label: "Lamp"}, "/World/Lamp2"},
		// Lamp2 is enumerated before Lamp3; its label match beats Lamp3's
		// path match because priority is checked per candidate.
		{"PerCandidatePriority", Identifier{Path: "/World/Lamp3", Label: "Lamp"}, "/World/Lamp2"},
		{"PathBeatsLabelOnSameEntity", Identifier{Path: "/World/Lamp1", Label: "FrontDoor"}, "/World/Lamp1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Resolve(s, c.id)
			require.Nil(t, err)
			require.Equal(t, c.want, got.Path)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	s := newTestSession(t)

	t.Run("EmptyIdentifier", func(t *testing.T) {
		_, err := Resolve(s, Identifier{})
		require.NotNil(t, err)
		require.Equal(t, fault.InvalidIdentifier, err.Kind)
	})
	t.Run("NoMatch", func(t *testing.T) {
		_, err := Resolve(s, Identifier{Label: "Chandelier"})
		require.NotNil(t, err)
		require.Equal(t, fault.NotFound, err.Kind)
		require.Equal(t, "label=Chandelier", err.Details["identifier"])
	})
	t.Run("UnparsableGUIDNeverMatches", func(t *testing.T) {
		_, err := Resolve(s, Identifier{GUID: "not-a-guid"})
		require.NotNil(t, err)
		require.Equal(t, fault.NotFound, err.Kind)
	})
}

func TestResolve_Idempotent(t *testing.T) {
	s := newTestSession(t)
	first, err := Resolve(s, Identifier{Label: "Lamp"})
	require.Nil(t, err)
	second, err := Resolve(s, Identifier{Label: "Lamp"})
	require.Nil(t, err)
	require.Same(t, first, second)
}
