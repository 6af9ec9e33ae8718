/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"goannotate/internal/geom"
)

// Node is one serialized item: a shape-tagged element with a flat attribute
// map. The attribute schema is owned by each item variant; the collection
// only cares about tags and ordering.
type Node struct {
	Tag   string
	Attrs map[string]string
	Text  string
}

func NewNode(tag string) Node { return Node{Tag: tag, Attrs: map[string]string{}} }

func (n Node) SetF(key string, v float64) {
	n.Attrs[key] = strconv.FormatFloat(v, 'f', -1, 64)
}
func (n Node) SetS(key, v string)     { n.Attrs[key] = v }
func (n Node) SetBool(key string, v bool) { n.Attrs[key] = strconv.FormatBool(v) }

// F returns the named attribute as float64, 0 when absent or malformed.
func (n Node) F(key string) float64 {
	v, _ := strconv.ParseFloat(n.Attrs[key], 64)
	return v
}
func (n Node) S(key string) string { return n.Attrs[key] }
func (n Node) Bool(key string) bool {
	v, _ := strconv.ParseBool(n.Attrs[key])
	return v
}

// newItemNode seeds a node with the normalized box and style attributes
// every boxy variant shares.
func newItemNode(tag string, b geom.Box, p *Properties) Node {
	n := NewNode(tag)
	bb := b.Normalized()
	n.SetF("x", bb.X)
	n.SetF("y", bb.Y)
	n.SetF("w", bb.W)
	n.SetF("h", bb.H)
	saveProps(&n, p)
	return n
}

func saveProps(n *Node, p *Properties) {
	n.SetS("stroke", p.Stroke.Hex())
	n.SetS("fill", p.Fill.Hex())
	n.SetF("width", p.Width)
	n.SetS("font", p.FontFamily)
	n.SetF("size", p.FontSize)
}

// loadItemNode restores box and style. Malformed attributes fall back to
// their current values; only a missing box is reported.
func loadItemNode(n Node, b *baseItem) error {
	if _, ok := n.Attrs["x"]; !ok {
		return fmt.Errorf("%s node: missing box", n.Tag)
	}
	b.box = geom.B(n.F("x"), n.F("y"), n.F("w"), n.F("h"))
	return loadProps(n, b)
}

func loadProps(n Node, b *baseItem) error {
	if s := n.S("stroke"); s != "" {
		if c, err := ParseHex(s); err == nil {
			b.props.Stroke = c
		}
	}
	if s := n.S("fill"); s != "" {
		if c, err := ParseHex(s); err == nil {
			b.props.Fill = c
		}
	}
	if w := n.F("width"); w > 0 {
		b.props.Width = w
	}
	if f := n.S("font"); f != "" {
		b.props.FontFamily = f
	}
	if s := n.F("size"); s > 0 {
		b.props.FontSize = s
	}
	return nil
}

// Save produces one node per item, in z-order.
func (c *Collection) Save() []Node {
	nodes := make([]Node, 0, len(c.items))
	for _, it := range c.items {
		nodes = append(nodes, it.Save())
	}
	return nodes
}

// loadableTags maps persisted shape tags to their factories. Blur and
// magnifier regions are session-only effects and are not restored.
var loadableTags = map[string]func(c *Collection) Item{
	"rectangle": func(c *Collection) Item { return newRectItem(c.props.Clone(), false) },
	"oval":      func(c *Collection) Item { return newOvalItem(c.props.Clone(), false) },
	"star":      func(c *Collection) Item { return newStarItem(c.props.Clone(), false) },
	"line":      func(c *Collection) Item { return newLineItem(c.props.Clone(), false) },
	"arrow":     func(c *Collection) Item { return newLineItem(c.props.Clone(), true) },
	"text":      func(c *Collection) Item { return newTextItem(c.props.Clone()) },
}

// Load appends one item per recognized node, preserving the saved order.
// Unrecognized tags and malformed nodes are skipped.
func (c *Collection) Load(nodes []Node) {
	for _, n := range nodes {
		factory, ok := loadableTags[n.Tag]
		if !ok {
			c.log.Debug("skipping unrecognized item node", "tag", n.Tag)
			continue
		}
		it := factory(c)
		if err := it.Load(n); err != nil {
			c.log.Warn("skipping malformed item node", "tag", n.Tag, "err", err)
			continue
		}
		c.items = append(c.items, it)
	}
	c.host.QueueDraw()
}

// MarshalItems renders the node list as an <items> XML document.
func MarshalItems(nodes []Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	root := xml.StartElement{Name: xml.Name{Local: "items"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		el := xml.StartElement{Name: xml.Name{Local: n.Tag}}
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: n.Attrs[k]})
		}
		if err := enc.EncodeToken(el); err != nil {
			return nil, err
		}
		if n.Text != "" {
			if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalItems parses an <items> document back into the ordered node
// list. Nested elements below the item level are ignored.
func UnmarshalItems(data []byte) ([]Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var nodes []Node
	depth := 0
	var cur *Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse items: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				n := NewNode(t.Name.Local)
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
				nodes = append(nodes, n)
				cur = &nodes[len(nodes)-1]
			}
		case xml.EndElement:
			if depth == 2 {
				cur = nil
			}
			depth--
		case xml.CharData:
			if depth == 2 && cur != nil {
				cur.Text += string(t)
			}
		}
	}
	return nodes, nil
}

// SaveXML serializes the whole collection.
func (c *Collection) SaveXML() ([]byte, error) { return MarshalItems(c.Save()) }

// LoadXML appends the items stored in data to the collection.
func (c *Collection) LoadXML(data []byte) error {
	nodes, err := UnmarshalItems(data)
	if err != nil {
		return err
	}
	c.Load(nodes)
	return nil
}
