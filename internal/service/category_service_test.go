package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-list/internal/model"
	"grocery-list/internal/repository"
)

func categoryNames(cs []model.Category) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestCategoryCreateAssignsNextPosition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	produce, err := f.categories.Create(ctx, "  Produce ")
	require.NoError(t, err)
	assert.Equal(t, "Produce", produce.Name)
	assert.Equal(t, 0, produce.Position)
	assert.NotZero(t, produce.ID)

	dairy, err := f.categories.Create(ctx, "Dairy")
	require.NoError(t, err)
	assert.Equal(t, 1, dairy.Position)
}

func TestCategoryCreateRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"", "   "} {
		_, err := f.categories.Create(context.Background(), name)
		require.Error(t, err)
		assert.True(t, model.IsValidation(err))
	}
}

func TestCategoryPositionsStayContiguous(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []uint
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		c, err := f.categories.Create(ctx, name)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	steps := []func() error{
		func() error { return f.categories.Delete(ctx, ids[2]) },
		func() error { return f.categories.Delete(ctx, ids[0]) },
		func() error { _, err := f.categories.Create(ctx, "F"); return err },
		func() error { return f.categories.Delete(ctx, ids[4]) },
		func() error { _, err := f.categories.Create(ctx, "G"); return err },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		list, err := f.categories.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, contiguous(len(list)), categoryPositions(list), "after step %d", i)
	}

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D", "F", "G"}, categoryNames(list))
}

func TestConcurrentCategoryMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers, rounds = 8, 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				c, err := f.categories.Create(ctx, fmt.Sprintf("w%d-%d", w, i))
				if err != nil {
					fail(err)
					continue
				}
				if _, err := f.entries.Create(ctx, EntryInput{Name: fmt.Sprintf("item %d-%d", w, i), CategoryID: &c.ID}); err != nil {
					fail(err)
				}
				if i%3 == 0 {
					if err := f.categories.Delete(ctx, c.ID); err != nil {
						fail(err)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	require.Empty(t, errs)

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, workers*(rounds-4))
	assert.Equal(t, contiguous(len(list)), categoryPositions(list))

	all, err := f.entries.List(ctx, repository.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, workers*rounds)

	var loose []int
	for _, e := range all {
		if e.CategoryID == nil {
			loose = append(loose, e.Position)
		}
	}
	assert.Equal(t, contiguous(workers*4), loose)
}

func TestCategoryReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	produce, err := f.categories.Create(ctx, "Produce")
	require.NoError(t, err)
	dairy, err := f.categories.Create(ctx, "Dairy")
	require.NoError(t, err)

	got, err := f.categories.Reorder(ctx, []uint{dairy.ID, produce.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy", "Produce"}, categoryNames(got))
	assert.Equal(t, []int{0, 1}, categoryPositions(got))

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, list)
}

func TestCategoryReorderPartialList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []uint
	for _, name := range []string{"A", "B", "C", "D"} {
		c, err := f.categories.Create(ctx, name)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	got, err := f.categories.Reorder(ctx, []uint{ids[3], ids[1]})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "A", "C"}, categoryNames(got))
	assert.Equal(t, contiguous(4), categoryPositions(got))
}

func TestCategoryReorderInvalidLeavesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.categories.Create(ctx, "A")
	require.NoError(t, err)
	b, err := f.categories.Create(ctx, "B")
	require.NoError(t, err)

	tests := []struct {
		name string
		ids  []uint
	}{
		{name: "empty", ids: nil},
		{name: "duplicate", ids: []uint{b.ID, b.ID}},
		{name: "unknown", ids: []uint{b.ID, 999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.categories.Reorder(ctx, tt.ids)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err))

			list, err := f.categories.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []uint{a.ID, b.ID}, []uint{list[0].ID, list[1].ID})
		})
	}
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.categories.Create(ctx, "A")
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, "B")
	require.NoError(t, err)

	updated, err := f.categories.Update(ctx, a.ID, model.CategoryUpdate{Name: ptr("Fruit"), Position: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "Fruit", updated.Name)
	assert.Equal(t, 1, updated.Position)

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "Fruit"}, categoryNames(list))

	_, err = f.categories.Update(ctx, a.ID, model.CategoryUpdate{Name: ptr(" ")})
	assert.True(t, model.IsValidation(err))

	_, err = f.categories.Update(ctx, 999, model.CategoryUpdate{Name: ptr("X")})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestCategoryDeleteUnknown(t *testing.T) {
	f := newFixture(t)
	err := f.categories.Delete(context.Background(), 12345)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCategoryDeleteMovesEntriesToUncategorized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	produce, err := f.categories.Create(ctx, "Produce")
	require.NoError(t, err)
	_, err = f.entries.Create(ctx, EntryInput{Name: "Tape"})
	require.NoError(t, err)
	apples, err := f.entries.Create(ctx, EntryInput{Name: "Apples", CategoryID: &produce.ID})
	require.NoError(t, err)
	pears, err := f.entries.Create(ctx, EntryInput{Name: "Pears", CategoryID: &produce.ID})
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, produce.ID))

	list, err := f.entries.List(ctx, repository.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, e := range list {
		assert.Nil(t, e.CategoryID, "entry %s", e.Name)
		assert.Equal(t, i, e.Position)
	}
	assert.Equal(t, []uint{apples.ID, pears.ID}, []uint{list[1].ID, list[2].ID})
}

func TestCategorySuggestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, name := range []string{"Frozen", "Produce", "Dairy", "Pet food"} {
		_, err := f.categories.Create(ctx, name)
		require.NoError(t, err)
	}

	got, err := f.categories.Suggestions(ctx, "d", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy", "Produce", "Pet food"}, got)

	got, err = f.categories.Suggestions(ctx, "PRO", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Produce"}, got)

	got, err = f.categories.Suggestions(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Frozen", "Produce"}, got)
}
