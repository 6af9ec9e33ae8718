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
	"strings"
	"testing"

	"goannotate/internal/geom"
)

func TestSaveLoadRoundTripPreservesOrderAndKinds(t *testing.T) {
	c, _, _ := newTestCollection()
	for _, k := range []Kind{KindRectangleFilled, KindOval, KindStar, KindLine, KindArrow, KindText} {
		c.AddShapeItem(k)
	}
	if txt, ok := c.ItemAt(5).(*TextItem); ok {
		txt.Insert("label <& text>")
		txt.StopEdit()
	}
	c.ItemAt(1).SetBox(geom.B(10, 20, 30, 40))

	data, err := c.SaveXML()
	if err != nil {
		t.Fatalf("SaveXML: %v", err)
	}

	fresh, _, _ := newTestCollection()
	if err := fresh.LoadXML(data); err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	if fresh.Len() != c.Len() {
		t.Fatalf("Len = %d, want %d", fresh.Len(), c.Len())
	}
	want := []string{"rectangle", "oval", "star", "line", "arrow", "text"}
	for i, name := range want {
		if fresh.ItemAt(i).Name() != name {
			t.Fatalf("item %d = %q, want %q", i, fresh.ItemAt(i).Name(), name)
		}
	}
	if got := fresh.ItemAt(1).Box().Normalized(); got != geom.B(10, 20, 30, 40) {
		t.Fatalf("oval box = %+v", got)
	}
	if got := fresh.ItemAt(5).(*TextItem).Text(); got != "label <& text>" {
		t.Fatalf("text content = %q", got)
	}
	if fresh.ItemAt(0).Mode() != ModeNone {
		t.Fatalf("loaded items should start unselected")
	}
}

func TestLoadSkipsUnrecognizedTags(t *testing.T) {
	doc := []byte(`<items>
  <rectangle filled="true" h="10" w="10" x="0" y="0"></rectangle>
  <widget x="1" y="1"></widget>
  <blur h="5" w="5" x="2" y="2"></blur>
  <oval x="3" y="3" w="4" h="4"></oval>
</items>`)

	c, _, _ := newTestCollection()
	if err := c.LoadXML(doc); err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (widget and blur skipped)", c.Len())
	}
	if c.ItemAt(0).Name() != "rectangle" || c.ItemAt(1).Name() != "oval" {
		t.Fatalf("wrong items survived the load")
	}
	if !c.ItemAt(0).(*RectItem).filled {
		t.Fatalf("filled flag lost")
	}
}

func TestLoadSkipsMalformedNodes(t *testing.T) {
	doc := []byte(`<items>
  <rectangle w="10"></rectangle>
  <oval x="3" y="3" w="4" h="4"></oval>
</items>`)

	c, _, _ := newTestCollection()
	if err := c.LoadXML(doc); err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	if c.Len() != 1 || c.ItemAt(0).Name() != "oval" {
		t.Fatalf("malformed rectangle not skipped")
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	c, _, _ := newTestCollection()
	c.AddShapeItem(KindRectangle)
	c.AddShapeItem(KindArrow)

	a, err := c.SaveXML()
	if err != nil {
		t.Fatalf("SaveXML: %v", err)
	}
	b, err := c.SaveXML()
	if err != nil {
		t.Fatalf("SaveXML: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("two saves of the same collection differ:\n%s\n---\n%s", a, b)
	}
}

func TestLineEndpointsSurviveRoundTrip(t *testing.T) {
	c, _, _ := newTestCollection()
	ln := c.AddShapeItem(KindLine).(*LineItem)
	// Endpoints deliberately "backwards" so normalization would destroy them.
	ln.SetBox(geom.B(100, 100, -60, -40))

	data, err := c.SaveXML()
	if err != nil {
		t.Fatalf("SaveXML: %v", err)
	}
	fresh, _, _ := newTestCollection()
	if err := fresh.LoadXML(data); err != nil {
		t.Fatalf("LoadXML: %v", err)
	}

	a, b := fresh.ItemAt(0).(*LineItem).endpoints()
	if a != (geom.Pt{X: 100, Y: 100}) || b != (geom.Pt{X: 40, Y: 60}) {
		t.Fatalf("endpoints = %v, %v", a, b)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalItems([]byte("<items><rect")); err == nil {
		t.Fatalf("truncated document parsed without error")
	}
}

func TestSavedDocumentShape(t *testing.T) {
	c, _, _ := newTestCollection()
	c.AddShapeItem(KindStarFilled)
	data, err := c.SaveXML()
	if err != nil {
		t.Fatalf("SaveXML: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "<items>") || !strings.Contains(s, "<star ") {
		t.Fatalf("unexpected document:\n%s", s)
	}
	if !strings.Contains(s, `filled="true"`) {
		t.Fatalf("filled attribute missing:\n%s", s)
	}
}
