package dedup

import (
	"testing"

	"github.com/mferrier/booktracker/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var existing = []entities.Book{
	{ID: "1", Title: "Dune", Author: "Frank Herbert", EndDate: "2023-05-01"},
	{ID: "2", Title: "Piranesi", Author: "Susanna Clarke"},
}

func TestCheck(t *testing.T) {
	t.Run("case-insensitive same-year match", func(t *testing.T) {
		got := Check("dune", "FRANK HERBERT", 2023, existing)
		require.NotNil(t, got)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("different year is not a duplicate", func(t *testing.T) {
		assert.Nil(t, Check("Dune", "Frank Herbert", 2024, existing))
	})

	t.Run("candidate without a year matches any year", func(t *testing.T) {
		got := Check("Dune", "Frank Herbert", 0, existing)
		require.NotNil(t, got)
		assert.Equal(t, "1", got.ID)
	})

	t.Run("existing book without a year matches any year", func(t *testing.T) {
		got := Check("Piranesi", "Susanna Clarke", 2021, existing)
		require.NotNil(t, got)
		assert.Equal(t, "2", got.ID)
	})

	t.Run("surrounding whitespace ignored", func(t *testing.T) {
		got := Check("  Dune ", " Frank Herbert ", 2023, existing)
		assert.NotNil(t, got)
	})

	t.Run("different title", func(t *testing.T) {
		assert.Nil(t, Check("Dune Messiah", "Frank Herbert", 2023, existing))
	})
}

func TestPartition(t *testing.T) {
	candidates := []entities.Book{
		{Title: "dune", Author: "frank herbert", EndDate: "2023-11-01"}, // same year, dup
		{Title: "Dune", Author: "Frank Herbert", EndDate: "2024-01-01"}, // re-read next year
		{Title: "Solaris", Author: "Stanislaw Lem", EndDate: "2023-02-02"},
		{Title: "Piranesi", Author: "Susanna Clarke", EndDate: "2019-01-01"}, // existing has no year
	}

	res := Partition(candidates, existing)

	require.Len(t, res.Duplicates, 2)
	assert.Equal(t, "dune", res.Duplicates[0].Title)
	assert.Equal(t, "Piranesi", res.Duplicates[1].Title)

	require.Len(t, res.Unique, 2)
	assert.Equal(t, "Dune", res.Unique[0].Title)
	assert.Equal(t, "Solaris", res.Unique[1].Title)
}

func TestPartitionYearFromLooseFormats(t *testing.T) {
	// Year extraction is pattern-based, so US-formatted dates count too.
	candidates := []entities.Book{
		{Title: "Dune", Author: "Frank Herbert", EndDate: "5/1/2023"},
	}
	res := Partition(candidates, existing)
	assert.Len(t, res.Duplicates, 1)
	assert.Empty(t, res.Unique)
}
