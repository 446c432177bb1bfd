package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/netforce/pkg/core/network"
	pkgerrors "github.com/matzehuels/netforce/pkg/errors"
)

// ReadOrder decodes an alternate node order: a JSON array of parse ranks,
// e.g. [2, 0, 1]. The ranks are not checked against any graph here; use
// [ApplyOrder] for that.
func ReadOrder(r io.Reader) ([]int, error) {
	var ranks []int
	if err := json.NewDecoder(r).Decode(&ranks); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "decode order")
	}
	return ranks, nil
}

// ImportOrder reads an alternate node order from the file at path.
func ImportOrder(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadOrder(f)
}

// ApplyOrder reorders the primary node sequence of g. Any failure is a
// RANK_LOOKUP error and leaves g unchanged.
func ApplyOrder(g *network.Graph, ranks []int) error {
	if err := g.Reorder(ranks); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeRankLookup, err, "apply alternate order")
	}
	return nil
}

// WriteOrder encodes the current node sequence of g as parse ranks, the
// format read by [ReadOrder].
func WriteOrder(g *network.Graph, w io.Writer) error {
	ranks := make([]int, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		ranks = append(ranks, n.Rank())
	}
	return json.NewEncoder(w).Encode(ranks)
}

// ExportOrder writes the current node order of g to the file at path.
func ExportOrder(g *network.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteOrder(g, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
