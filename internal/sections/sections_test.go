package sections_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/sections"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

func backends() map[string]func(t *testing.T) sections.Store {
	return map[string]func(t *testing.T) sections.Store{
		"database": func(t *testing.T) sections.Store {
			return sections.NewDBStore(storagetest.NewStore(t))
		},
		"file": func(t *testing.T) sections.Store {
			return sections.NewFileStore(filepath.Join(t.TempDir(), "data", "report_sections.json"))
		},
	}
}

func intPtr(i int) *int { return &i }

func TestStoreContract(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			empty, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			trends := &storage.ReportSection{SectionKey: "trends", SectionName: "Trends", DisplayOrder: 3, IsEnabled: true}
			summary := &storage.ReportSection{
				SectionKey:   "executive_summary",
				SectionName:  "Executive Summary",
				DisplayOrder: 1,
				IsEnabled:    true,
				IsRequired:   true,
				DataSources:  storage.JSONDoc(`["campaign","objectives"]`),
				MinLength:    intPtr(100),
				MaxLength:    intPtr(400),
			}
			require.NoError(t, store.Create(ctx, trends))
			require.NoError(t, store.Create(ctx, summary))
			assert.NotZero(t, summary.ID)

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "executive_summary", list[0].SectionKey, "ordered by display_order")
			assert.JSONEq(t, `["campaign","objectives"]`, string(list[0].DataSources))

			dup := &storage.ReportSection{SectionKey: "trends", SectionName: "Again"}
			err = store.Create(ctx, dup)
			assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

			bad := &storage.ReportSection{SectionKey: "Key With Spaces", SectionName: "Bad"}
			err = store.Create(ctx, bad)
			assert.True(t, domain.Is(err, domain.ErrorTypeValidation))
			assert.Contains(t, domain.PublicMessage(err), "section_key must match")

			inverted := &storage.ReportSection{SectionKey: "inverted", SectionName: "Inverted", MinLength: intPtr(9), MaxLength: intPtr(3)}
			assert.True(t, domain.Is(store.Create(ctx, inverted), domain.ErrorTypeValidation))

			scalar := &storage.ReportSection{SectionKey: "scalar", SectionName: "Scalar", DataSources: storage.JSONDoc(`"x"`)}
			assert.True(t, domain.Is(store.Create(ctx, scalar), domain.ErrorTypeValidation))

			trends.SectionKey = "executive_summary"
			assert.True(t, domain.Is(store.Update(ctx, trends), domain.ErrorTypeValidation))

			trends.SectionKey = "tactic_trends"
			trends.DisplayOrder = 0
			require.NoError(t, store.Update(ctx, trends))

			got, err := store.Get(ctx, trends.ID)
			require.NoError(t, err)
			assert.Equal(t, "tactic_trends", got.SectionKey)

			list, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tactic_trends", list[0].SectionKey)

			require.NoError(t, store.Delete(ctx, trends.ID))
			_, err = store.Get(ctx, trends.ID)
			assert.True(t, domain.Is(err, domain.ErrorTypeNotFound))
			assert.True(t, domain.Is(store.Delete(ctx, trends.ID), domain.ErrorTypeNotFound))
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.json")
	ctx := context.Background()

	first := sections.NewFileStore(path)
	require.NoError(t, first.Create(ctx, &storage.ReportSection{SectionKey: "a", SectionName: "A"}))
	require.NoError(t, first.Create(ctx, &storage.ReportSection{SectionKey: "b", SectionName: "B"}))

	second := sections.NewFileStore(path)
	list, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	c := &storage.ReportSection{SectionKey: "c", SectionName: "C"}
	require.NoError(t, second.Create(ctx, c))
	assert.Equal(t, int64(3), c.ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_CorruptFileIsPersistenceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := sections.NewFileStore(path).List(context.Background())
	assert.True(t, domain.Is(err, domain.ErrorTypePersistence))
	assert.Equal(t, "sections file is corrupt", domain.PublicMessage(err))
}
