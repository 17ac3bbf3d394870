// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package column

import "testing"

func TestMappedBooleanViewerPassthrough(t *testing.T) {
	c, _ := buildCategorical(t, []string{"a", "b"})
	if _, ok := c.Map([]int32{1, 0}, true).(BooleanViewer); !ok {
		t.Fatal("Mapped over a Categorical must still satisfy BooleanViewer")
	}
}

func TestMappedIndexFillerOutOfRangeIsZero(t *testing.T) {
	c, _ := buildCategorical(t, []string{"a", "b", "c"})
	mapped := c.Map([]int32{2, -1, 5}, true)
	filler, ok := mapped.(IndexFiller)
	if !ok {
		t.Fatal("Mapped over a Categorical must satisfy IndexFiller")
	}
	idx := make([]int32, 3)
	filler.FillIndex(idx, 0)
	if idx[1] != 0 || idx[2] != 0 {
		t.Fatalf("idx = %v, want zero for out-of-range rows", idx)
	}
	if idx[0] == 0 {
		t.Fatal("idx[0] should resolve to a real dictionary index")
	}
}

func TestMappedComposeCacheReusesFlattening(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{1, 2, 3, 4})
	base := c.Map([]int32{3, 2, 1, 0}, true).(*Mapped)

	cache := NewComposeCache()
	rowMap := []int32{0, 1}
	first := base.MapCached(rowMap, true, cache)
	second := base.MapCached(rowMap, true, cache)

	fm, ok := first.(*Mapped)
	if !ok {
		t.Fatal("expected *Mapped")
	}
	sm, ok := second.(*Mapped)
	if !ok {
		t.Fatal("expected *Mapped")
	}
	if &fm.rowMap[0] != &sm.rowMap[0] {
		t.Fatal("expected cached composition to be reused, not recomputed")
	}
}
