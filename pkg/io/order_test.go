package io

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/network"
	pkgerrors "github.com/matzehuels/netforce/pkg/errors"
)

func threeNodes(t *testing.T) *network.Graph {
	t.Helper()
	g := network.New()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := g.AddNode(network.NodeData{ID: id}, geom.Zero); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestReadOrder(t *testing.T) {
	ranks, err := ReadOrder(strings.NewReader("[2, 0, 1]"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ranks, []int{2, 0, 1}) {
		t.Errorf("ranks = %v", ranks)
	}

	if _, err := ReadOrder(strings.NewReader(`{"not":"an array"}`)); !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidInput) {
		t.Errorf("object input: got %v, want INVALID_INPUT", err)
	}
}

func TestApplyOrder(t *testing.T) {
	g := threeNodes(t)
	if err := ApplyOrder(g, []int{1, 2, 0}); err != nil {
		t.Fatal(err)
	}
	if got := network.NodeIDs(g.Nodes()); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("order = %v", got)
	}

	err := ApplyOrder(g, []int{0, 1, 5})
	if !pkgerrors.Is(err, pkgerrors.ErrCodeRankLookup) {
		t.Fatalf("got %v, want RANK_LOOKUP", err)
	}
	if got := network.NodeIDs(g.Nodes()); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("graph changed after failed apply: %v", got)
	}
}

func TestOrderRoundTrip(t *testing.T) {
	g := threeNodes(t)
	if err := g.Reorder([]int{2, 1, 0}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteOrder(g, &buf); err != nil {
		t.Fatal(err)
	}
	ranks, err := ReadOrder(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ranks, []int{2, 1, 0}) {
		t.Errorf("ranks = %v", ranks)
	}

	path := filepath.Join(t.TempDir(), "order.json")
	if err := ExportOrder(g, path); err != nil {
		t.Fatal(err)
	}
	fresh := threeNodes(t)
	loaded, err := ImportOrder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ApplyOrder(fresh, loaded); err != nil {
		t.Fatal(err)
	}
	if got := network.NodeIDs(fresh.Nodes()); !slices.Equal(got, []string{"c", "b", "a"}) {
		t.Errorf("order = %v", got)
	}
}
