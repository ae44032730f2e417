// ABOUTME: Tests for rank ordering, tie stability and most-recent removal
// ABOUTME: Includes property tests over random insertion sequences

package layers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

func item(id string, c wardrobe.Category) wardrobe.Item {
	return wardrobe.Item{ID: id, Name: id, ImageRef: "https://example.com/" + id, Category: c}
}

func TestInsert_OrdersByRank(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("pants", wardrobe.Bottoms)))
	require.NoError(t, s.Insert(item("briefs", wardrobe.Underwear)))
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))

	assert.Equal(t, []string{"briefs", "pants", "boots"}, s.IDs())
}

func TestInsert_TiesKeepInsertionOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("jacket", wardrobe.TopsOuterwear)))
	require.NoError(t, s.Insert(item("dress", wardrobe.SuitsDresses)))
	require.NoError(t, s.Insert(item("coat", wardrobe.TopsOuterwear)))

	assert.Equal(t, []string{"jacket", "dress", "coat"}, s.IDs())
}

func TestInsert_UnderwearAfterShoes(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("Sneakers", wardrobe.Shoes)))
	require.NoError(t, s.Insert(item("Briefs", wardrobe.Underwear)))

	assert.Equal(t, []string{"Briefs", "Sneakers"}, s.OrderedNames())
	assert.Equal(t, "Briefs, Sneakers", s.Describe())
}

func TestInsert_CustomCategorySortsLast(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("cape", wardrobe.Category("Capes"))))
	require.NoError(t, s.Insert(item("hat", wardrobe.Thematic)))

	assert.Equal(t, []string{"hat", "cape"}, s.IDs())
}

func TestInsert_Rejects(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))

	err := s.Insert(item("boots", wardrobe.Shoes))
	assert.ErrorIs(t, err, faults.ErrValidation)

	err = s.Insert(item("", wardrobe.Shoes))
	assert.ErrorIs(t, err, faults.ErrValidation)

	assert.Equal(t, 1, s.Len())
}

func TestRemoveLast_RemovesMostRecentInsertion(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))
	require.NoError(t, s.Insert(item("briefs", wardrobe.Underwear)))

	removed, ok := s.RemoveLast()
	require.True(t, ok)
	assert.Equal(t, "briefs", removed.ID)
	assert.Equal(t, []string{"boots"}, s.IDs())

	removed, ok = s.RemoveLast()
	require.True(t, ok)
	assert.Equal(t, "boots", removed.ID)

	_, ok = s.RemoveLast()
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))

	c := s.Clone()
	require.NoError(t, c.Insert(item("briefs", wardrobe.Underwear)))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
	assert.False(t, s.Contains("briefs"))
}

func TestReset(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
	require.NoError(t, s.Insert(item("boots", wardrobe.Shoes)))
}

func TestStack_RankInvariantProperty(t *testing.T) {
	categories := append(wardrobe.Categories, wardrobe.Category("Custom"))

	rapid.Check(t, func(t *rapid.T) {
		s := New()
		n := rapid.IntRange(0, 30).Draw(t, "n")
		for i := 0; i < n; i++ {
			c := rapid.SampledFrom(categories).Draw(t, "category")
			if err := s.Insert(item(fmt.Sprintf("g%d", i), c)); err != nil {
				t.Fatalf("insert: %v", err)
			}
			if rapid.Bool().Draw(t, "remove") {
				s.RemoveLast()
			}
		}

		entries := s.Entries()
		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			if prev.Item.Rank() > cur.Item.Rank() {
				t.Fatalf("rank order broken at %d: %d > %d", i, prev.Item.Rank(), cur.Item.Rank())
			}
			if prev.Item.Rank() == cur.Item.Rank() && prev.Seq > cur.Seq {
				t.Fatalf("tie order broken at %d", i)
			}
		}
	})
}
