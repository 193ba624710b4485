package ops

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/mnemo/internal/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.Open(filepath.Join(t.TempDir(), "memory.json"), store.WithLogger(logger))
	require.NoError(t, err)
	return NewDefaultRegistry(s, logger)
}

func exec(t *testing.T, r *Registry, op, args string) Result {
	t.Helper()
	res, err := r.Execute(context.Background(), op, args)
	require.NoError(t, err)
	return res
}

func TestRegistry_RegistersEveryOperation(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{
		"memory_bulk_delete",
		"memory_bulk_store",
		"memory_delete",
		"memory_export",
		"memory_import",
		"memory_list",
		"memory_recall",
		"memory_related",
		"memory_search",
		"memory_stats",
		"memory_store",
	}, r.Names())
}

func TestRegistry_UnknownOperation(t *testing.T) {
	r := newTestRegistry(t)
	res := exec(t, r, "memory_teleport", "{}")
	assert.Contains(t, res.Error, "unknown operation")
}

func TestRegistry_SchemaRejectsBadArguments(t *testing.T) {
	r := newTestRegistry(t)

	// Missing required fields never reach the store.
	res := exec(t, r, "memory_store", `{"value":"no key"}`)
	assert.Contains(t, res.Error, "invalid arguments")

	res = exec(t, r, "memory_store", `{"key":"k","value":"v","bogus":1}`)
	assert.Contains(t, res.Error, "invalid arguments")

	res = exec(t, r, "memory_search", `{"sort_by":"karma"}`)
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestStoreRecallDelete_EndToEnd(t *testing.T) {
	r := newTestRegistry(t)

	res := exec(t, r, "memory_store", `{"namespace":"work","key":"goal-1","value":"Ship v1","tags":["launch"]}`)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.Output, `Stored "goal-1" in namespace "work"`)

	// Second store of the same key reports an update.
	res = exec(t, r, "memory_store", `{"namespace":"work","key":"goal-1","value":"Ship v1.1"}`)
	assert.Contains(t, res.Output, `Updated "goal-1"`)

	res = exec(t, r, "memory_recall", `{"namespace":"work","key":"goal-1"}`)
	assert.Empty(t, res.Error)

	var view struct {
		Key             string `json:"key"`
		Value           string `json:"value"`
		EstimatedTokens int    `json:"estimatedTokens"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &view))
	assert.Equal(t, "goal-1", view.Key)
	assert.Equal(t, "Ship v1.1", view.Value)
	assert.Equal(t, store.EstimateTokens("Ship v1.1"), view.EstimatedTokens)

	res = exec(t, r, "memory_delete", `{"namespace":"work","key":"goal-1"}`)
	assert.Contains(t, res.Output, `Deleted "goal-1"`)

	res = exec(t, r, "memory_delete", `{"namespace":"work","key":"goal-1"}`)
	assert.Contains(t, res.Output, "No memory to delete")
}

func TestRecall_MissIsASoftAnswer(t *testing.T) {
	r := newTestRegistry(t)
	res := exec(t, r, "memory_recall", `{"key":"nothing-here"}`)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.Output, `No memory found for "nothing-here" in namespace "default"`)
}

func TestSearchAndList_Operations(t *testing.T) {
	r := newTestRegistry(t)

	exec(t, r, "memory_bulk_store", `{"entries":[
		{"namespace":"work","key":"goal-1","value":"Ship v1","tags":["launch"]},
		{"namespace":"work","key":"goal-2","value":"Ship docs","tags":["launch","docs"]},
		{"namespace":"home","key":"chore","value":"mow lawn"}
	]}`)

	res := exec(t, r, "memory_search", `{"query":"ship","namespace":"work"}`)
	var sr struct {
		Count   int `json:"count"`
		Records []struct {
			Key string `json:"key"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &sr))
	assert.Equal(t, 2, sr.Count)

	res = exec(t, r, "memory_list", `{}`)
	var listing struct {
		Total      int                 `json:"total"`
		Namespaces map[string][]string `json:"namespaces"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &listing))
	assert.Equal(t, 3, listing.Total)
	assert.Equal(t, []string{"goal-1", "goal-2"}, listing.Namespaces["work"])
}

func TestBulkDelete_Operation(t *testing.T) {
	r := newTestRegistry(t)

	exec(t, r, "memory_bulk_store", `{"entries":[
		{"key":"draft-1","value":"a"},
		{"key":"draft-2","value":"b"},
		{"key":"final","value":"c"}
	]}`)

	res := exec(t, r, "memory_bulk_delete", `{"key_pattern":"draft-*"}`)
	assert.Equal(t, "Deleted 2 memories", res.Output)

	// Neither selector: the store's validation surfaces as a soft error.
	res = exec(t, r, "memory_bulk_delete", `{}`)
	assert.Contains(t, res.Error, "either namespace or key pattern is required")
}

func TestRelated_Operation(t *testing.T) {
	r := newTestRegistry(t)

	exec(t, r, "memory_store", `{"namespace":"work","key":"goal-1","value":"Ship v1","tags":["launch","q1"]}`)
	exec(t, r, "memory_store", `{"namespace":"work","key":"goal-2","value":"Ship v1 docs","tags":["launch","docs"]}`)

	res := exec(t, r, "memory_related", `{"namespace":"work","key":"goal-1"}`)
	var rr struct {
		Anchor  string `json:"anchor"`
		Count   int    `json:"count"`
		Related []struct {
			Score  int `json:"score"`
			Record struct {
				Key string `json:"key"`
			} `json:"record"`
		} `json:"related"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &rr))
	assert.Equal(t, "work:goal-1", rr.Anchor)
	require.Equal(t, 1, rr.Count)
	assert.Equal(t, "goal-2", rr.Related[0].Record.Key)
	assert.Greater(t, rr.Related[0].Score, 0)
}

func TestStats_Operation(t *testing.T) {
	r := newTestRegistry(t)

	exec(t, r, "memory_store", `{"namespace":"work","key":"a","value":"1234","tags":["x"]}`)
	exec(t, r, "memory_store", `{"namespace":"home","key":"b","value":"5678","tags":["x","y"]}`)

	res := exec(t, r, "memory_stats", "")
	var stats struct {
		TotalRecords int            `json:"totalRecords"`
		ByNamespace  map[string]int `json:"byNamespace"`
		ByTag        map[string]int `json:"byTag"`
		FileSize     int64          `json:"fileSizeBytes"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &stats))
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 1, stats.ByNamespace["work"])
	assert.Equal(t, 2, stats.ByTag["x"])
	assert.Greater(t, stats.FileSize, int64(0))
}

func TestExportImport_Operations(t *testing.T) {
	r := newTestRegistry(t)

	exec(t, r, "memory_store", `{"namespace":"work","key":"goal-1","value":"Ship v1"}`)

	res := exec(t, r, "memory_export", `{"namespace":"work"}`)
	assert.Empty(t, res.Error)

	// Re-import into a fresh store.
	dest := newTestRegistry(t)
	args, err := json.Marshal(map[string]any{"snapshot": json.RawMessage(res.Output)})
	require.NoError(t, err)

	impRes := exec(t, dest, "memory_import", string(args))
	assert.Equal(t, "Imported 1 memories, skipped 0", impRes.Output)

	impRes = exec(t, dest, "memory_import", string(args))
	assert.Equal(t, "Imported 0 memories, skipped 1", impRes.Output)
}

func TestImport_MalformedSnapshotRejectedAtTheBoundary(t *testing.T) {
	r := newTestRegistry(t)

	// Record missing its value: the schema pass rejects it before the store
	// sees anything.
	res := exec(t, r, "memory_import", `{"snapshot":{"records":[{"key":"k"}]}}`)
	assert.Contains(t, res.Error, "invalid arguments")

	res = exec(t, r, "memory_import", `{"snapshot":{}}`)
	assert.Contains(t, res.Error, "invalid arguments")

	res = exec(t, r, "memory_list", "")
	var listing struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &listing))
	assert.Zero(t, listing.Total)
}
