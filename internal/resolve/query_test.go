package resolve

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
)

// Pattern: Result comparison
func TestMatchWildcard(t *testing.T) {
	cases := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"", "anything", true},
		{"Door", "Door", true},
		{"door", "DOOR", true},
		{"Door", "FrontDoor", false},
		{"BP_*", "BP_Door_C", true},
		{"BP_*", "Door_BP", false},
		{"*_C", "BP_Door_C", true},
		{"*_C", "BP_C_Door", false},
		{"*Door*", "FrontDoorFrame", true},
		{"*Door*", "Window", false},
		{"*", "anything", true},
		{"**", "anything", true},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s/%s", c.pattern, c.value), func(t *testing.T) {
			require.Equal(t, c.want, MatchWildcard(c.pattern, c.value))
		})
	}
}

func queryPaths(s *graph.Session, c Criteria) []string {
	var out []string
	for _, e := range Query(s, c) {
		out = append(out, e.Path)
	}
	return out
}

func TestQuery(t *testing.T) {
	s := newTestSession(t)
	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"All", Criteria{},
			[]string{"/World/Lamp1", "/World/Lamp2", "/World/Lamp3", "/World/Door1"}},
		{"ClassPrefix", Criteria{Class: "BP_*"}, []string{"/World/Door1"}},
		{"ClassContains", Criteria{Class: "*Light*"},
			[]string{"/World/Lamp1", "/World/Lamp2", "/World/Lamp3"}},
		{"LabelExact", Criteria{Label: "Lamp"}, []string{"/World/Lamp2", "/World/Lamp3"}},
		{"SelectedOnly", Criteria{SelectedOnly: true}, []string{"/World/Lamp1"}},
		{"RequireTags", Criteria{RequireTags: []string{"Interactable", "Breakable"}},
			[]string{"/World/Lamp3"}},
		{"ExcludeTags", Criteria{Class: "*Light", ExcludeTags: []string{"Interactable"}},
			[]string{"/World/Lamp2"}},
		{"Capped", Criteria{MaxResults: 2}, []string{"/World/Lamp1", "/World/Lamp2"}},
		{"NoMatch", Criteria{Class: "Spaceship"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, queryPaths(s, c.c)); diff != "" {
				t.Fatalf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuery_DefaultCap(t *testing.T) {
	w := graph.NewWorld()
	for i := 0; i < DefaultMaxResults+20; i++ {
		require.NoError(t, w.Add(&graph.Entity{Path: fmt.Sprintf("/World/E%03d", i)}))
	}
	s := graph.NewSession(w, meta.NewRegistry())
	require.Len(t, Query(s, Criteria{}), DefaultMaxResults)
	require.Len(t, Query(s, Criteria{MaxResults: 5}), 5)
}
