// Package io reads network graphs from XML and reads and writes alternate
// node orders.
//
// # Graph Source Format
//
// A document has one root element. Each child of the root is a graph section
// holding <node> and <edge> elements:
//
//	<network>
//	  <graph>
//	    <node Id="1" Label="KLM" link="http://..." category="Airline"
//	          like_count="1200" talking_about_count="40" users_can_post="yes"/>
//	    <node Id="2" Label="Schiphol" category="Airport"
//	          like_count="300" talking_about_count="2" users_can_post="no"/>
//	    <edge Id="e1" Source="1" Target="2"/>
//	  </graph>
//	</network>
//
// Node attributes: Id (required, unique), Label, link, category, like_count
// and talking_about_count (required integers), users_can_post ("yes" in any
// case means true). Degree attributes present in some exports are ignored;
// degree is computed from the edges.
//
// Edge attributes: Id, Source and Target (node IDs).
//
// # Loading
//
// Use [ImportXML] for a file or [ReadXML] for any io.Reader:
//
//	res, err := io.ImportXML("klmnetwork.xml", io.LoadOptions{Seed: 42})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g := res.Graphs[0]
//
// Loading is two-pass per section: all nodes, then all edges. Structural
// problems abort with a PARSE_ERROR and nothing is returned. An edge with an
// unknown endpoint is skipped, logged and recorded in [Result.Warnings].
//
// # Alternate Orders
//
// An alternate order is a JSON array of parse ranks. [ImportOrder] and
// [ReadOrder] decode it; [ApplyOrder] applies it to a graph and reports any
// mismatch as a RANK_LOOKUP error. [ExportOrder] writes the current order of
// a graph in the same format.
package io
