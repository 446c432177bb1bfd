package io

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html/charset"

	"github.com/matzehuels/netforce/pkg/core/geom"
	"github.com/matzehuels/netforce/pkg/core/network"
	pkgerrors "github.com/matzehuels/netforce/pkg/errors"
)

// DefaultSpawnRange is the half-width of the cube that seed positions are
// drawn from.
const DefaultSpawnRange = 10.0

// Element and attribute names of the graph source format.
const (
	elemNode = "node"
	elemEdge = "edge"

	attrLikes        = "like_count"
	attrTalkingAbout = "talking_about_count"
)

// LoadOptions configures XML loading.
type LoadOptions struct {
	// Seed feeds the PRNG for seed positions. The same seed and source always
	// yield the same positions. Ignored when Rand is set.
	Seed uint64

	// Rand overrides the PRNG.
	Rand *rand.Rand

	// SpawnRange is the half-width R of the cube [-R, R) each coordinate is
	// drawn from. Zero means DefaultSpawnRange.
	SpawnRange float64

	// Logger receives warnings for skipped edges. Nil discards them.
	Logger *log.Logger
}

func (o LoadOptions) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
}

func (o LoadOptions) spawn() float64 {
	if o.SpawnRange > 0 {
		return o.SpawnRange
	}
	return DefaultSpawnRange
}

func (o LoadOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Warning describes a recoverable problem found while loading. The affected
// element was skipped and loading continued.
type Warning struct {
	Code   pkgerrors.Code `json:"code"`
	Graph  int            `json:"graph"` // index of the graph section
	Line   int            `json:"line"`  // 1-based line of the element
	EdgeID string         `json:"edge"`
	Source string         `json:"source"`
	Target string         `json:"target"`
}

func (w Warning) String() string {
	return fmt.Sprintf("graph %d line %d: %s: edge %q references %s -> %s",
		w.Graph, w.Line, w.Code, w.EdgeID, w.Source, w.Target)
}

// Result is the outcome of a successful load.
type Result struct {
	Graphs   []*network.Graph
	Warnings []Warning
}

type xmlNode struct {
	ID           string `xml:"Id,attr"`
	Label        string `xml:"Label,attr"`
	Link         string `xml:"link,attr"`
	Category     string `xml:"category,attr"`
	Likes        string `xml:"like_count,attr"`
	TalkingAbout string `xml:"talking_about_count,attr"`
	UsersCanPost string `xml:"users_can_post,attr"`
}

type xmlEdge struct {
	ID     string `xml:"Id,attr"`
	Source string `xml:"Source,attr"`
	Target string `xml:"Target,attr"`
}

type located[T any] struct {
	line int
	elem T
}

type section struct {
	nodes []located[xmlNode]
	edges []located[xmlEdge]
}

// ReadXML decodes every graph section of the document in r.
//
// The document has a single root element whose child elements are graph
// sections; the names of the root and section elements are not checked.
// Inside a section, <node> and <edge> elements are read and everything else is
// ignored:
//
//	<network>
//	  <graph>
//	    <node Id="1" Label="KLM" link="..." category="Airline"
//	          like_count="100" talking_about_count="5" users_can_post="Yes"/>
//	    <edge Id="e1" Source="1" Target="2"/>
//	  </graph>
//	</network>
//
// All nodes of a section are created before any of its edges, so an edge may
// appear before the nodes it references. Each node gets a seed position with
// every coordinate drawn uniformly from [-R, R).
//
// ReadXML fails with a PARSE_ERROR when the root is missing or the XML is
// malformed, or when a node has an empty or duplicate ID or a non-numeric
// like_count or talking_about_count. No graph is returned in that case.
// An edge naming an unknown node is skipped and reported as a DANGLING_EDGE
// warning in the result.
func ReadXML(r io.Reader, opts LoadOptions) (*Result, error) {
	sections, err := scan(r)
	if err != nil {
		return nil, err
	}

	rng := opts.rng()
	spawn := opts.spawn()
	logger := opts.logger()

	res := &Result{Graphs: make([]*network.Graph, 0, len(sections))}
	for gi, sec := range sections {
		g := network.New()

		// First pass: nodes.
		for i, ln := range sec.nodes {
			data, err := nodeData(ln.elem, i)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "graph %d line %d: node %q", gi, ln.line, ln.elem.ID)
			}
			pos := geom.V(uniform(rng, spawn), uniform(rng, spawn), uniform(rng, spawn))
			if _, err := g.AddNode(data, pos); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "graph %d line %d: node %q", gi, ln.line, data.ID)
			}
		}

		// Second pass: edges.
		for _, le := range sec.edges {
			e := le.elem
			if _, err := g.AddEdge(e.ID, e.Source, e.Target); err != nil {
				if !errors.Is(err, network.ErrUnknownSourceNode) && !errors.Is(err, network.ErrUnknownTargetNode) {
					return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInternal, err, "graph %d line %d: edge %q", gi, le.line, e.ID)
				}
				w := Warning{
					Code:   pkgerrors.ErrCodeDanglingEdge,
					Graph:  gi,
					Line:   le.line,
					EdgeID: e.ID,
					Source: e.Source,
					Target: e.Target,
				}
				logger.Warn("skipping edge with unknown endpoint",
					"graph", gi, "line", le.line, "edge", e.ID, "source", e.Source, "target", e.Target)
				res.Warnings = append(res.Warnings, w)
			}
		}

		logger.Debug("graph loaded", "graph", gi, "nodes", g.NodeCount(), "edges", g.EdgeCount())
		res.Graphs = append(res.Graphs, g)
	}
	return res, nil
}

// ImportXML reads the XML file at path. See [ReadXML].
func ImportXML(path string, opts LoadOptions) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadXML(f, opts)
}

// scan tokenizes the document and collects node and edge elements per graph
// section together with their line numbers.
func scan(r io.Reader) ([]section, error) {
	d := xml.NewDecoder(r)
	// Sources that declare ISO-8859-1, windows-1252 or UTF-16 are transcoded.
	d.CharsetReader = charset.NewReaderLabel
	var (
		sections []section
		depth    int
		rootSeen bool
		rootDone bool
	)
	for {
		line, _ := d.InputPos()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "line %d: malformed document", se.Line)
			}
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "read document")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case depth == 0:
				if rootDone {
					return nil, pkgerrors.New(pkgerrors.ErrCodeParse, "line %d: more than one root element", line)
				}
				rootSeen = true
				depth++
			case depth == 1:
				sections = append(sections, section{})
				depth++
			case depth == 2 && t.Name.Local == elemNode:
				var n xmlNode
				if err := d.DecodeElement(&n, &t); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "line %d: node element", line)
				}
				cur := &sections[len(sections)-1]
				cur.nodes = append(cur.nodes, located[xmlNode]{line: line, elem: n})
			case depth == 2 && t.Name.Local == elemEdge:
				var e xmlEdge
				if err := d.DecodeElement(&e, &t); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "line %d: edge element", line)
				}
				cur := &sections[len(sections)-1]
				cur.edges = append(cur.edges, located[xmlEdge]{line: line, elem: e})
			default:
				if err := d.Skip(); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.ErrCodeParse, err, "line %d: malformed document", line)
				}
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootDone = true
			}
		}
	}
	if !rootSeen {
		return nil, pkgerrors.New(pkgerrors.ErrCodeParse, "missing root element")
	}
	return sections, nil
}

func nodeData(n xmlNode, index int) (network.NodeData, error) {
	likes, err := strconv.Atoi(strings.TrimSpace(n.Likes))
	if err != nil {
		return network.NodeData{}, fmt.Errorf("attribute %s: %w", attrLikes, err)
	}
	talking, err := strconv.Atoi(strings.TrimSpace(n.TalkingAbout))
	if err != nil {
		return network.NodeData{}, fmt.Errorf("attribute %s: %w", attrTalkingAbout, err)
	}
	return network.NodeData{
		ID:                n.ID,
		Label:             n.Label,
		Description:       "Node " + strconv.Itoa(index),
		LinkURL:           n.Link,
		Category:          n.Category,
		NumLikes:          likes,
		TalkingAboutCount: talking,
		UsersCanPost:      strings.EqualFold(n.UsersCanPost, "yes"),
	}, nil
}

func uniform(rng *rand.Rand, r float64) float64 {
	return (rng.Float64()*2 - 1) * r
}
