package layout

// ===== Position Cache =====

import (
	"context"
	"encoding/json"
	"os"

	"github.com/lselvakumaran/fixinventory/pkg/cache"
	"github.com/lselvakumaran/fixinventory/pkg/errors"
	"github.com/lselvakumaran/fixinventory/pkg/graph"
	"github.com/lselvakumaran/fixinventory/pkg/observability"
)

// PositionCache maps node IDs to persisted positions.
type PositionCache map[string]graph.Vector3

// LoadPositionCache reads a position cache side file. The file is advisory:
// a missing file, unreadable JSON, or a top level that isn't a mapping all
// yield an empty cache, never an error. Individual entries that don't parse
// as positions are skipped.
func LoadPositionCache(path string) PositionCache {
	data, err := os.ReadFile(path)
	if err != nil {
		return PositionCache{}
	}
	return decodePositions(data)
}

// SavePositionCache writes the mapping as a JSON side file.
func SavePositionCache(path string, positions map[string]graph.Vector3) error {
	data, err := encodePositions(positions)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to write position cache")
	}
	return nil
}

// LoadCached fetches the position cache for a snapshot from a cache backend,
// keyed by the snapshot hash. Misses and decode failures yield an empty cache.
func LoadCached(ctx context.Context, c cache.Cache, snap *graph.Snapshot) PositionCache {
	key := cache.LayoutKey(snap.Hash())
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, key)
		return PositionCache{}
	}
	observability.Cache().OnCacheHit(ctx, key)
	return decodePositions(data)
}

// SaveCached stores the mapping in a cache backend keyed by snapshot hash.
func SaveCached(ctx context.Context, c cache.Cache, snap *graph.Snapshot, positions map[string]graph.Vector3) error {
	data, err := encodePositions(positions)
	if err != nil {
		return err
	}
	key := cache.LayoutKey(snap.Hash())
	if err := c.Set(ctx, key, data, 0); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}

// Positions serialize as three-component arrays, matching the side files the
// exporter writes. Object-style {"x":..,"y":..,"z":..} entries are accepted
// on read for hand-edited files.
func decodePositions(data []byte) PositionCache {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return PositionCache{}
	}
	out := make(PositionCache, len(raw))
	for id, entry := range raw {
		var arr [3]float64
		if err := json.Unmarshal(entry, &arr); err == nil {
			out[id] = graph.Vector3{X: arr[0], Y: arr[1], Z: arr[2]}
			continue
		}
		var vec graph.Vector3
		if err := json.Unmarshal(entry, &vec); err == nil {
			out[id] = vec
		}
	}
	return out
}

func encodePositions(positions map[string]graph.Vector3) ([]byte, error) {
	raw := make(map[string][3]float64, len(positions))
	for id, p := range positions {
		raw[id] = [3]float64{p.X, p.Y, p.Z}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to encode positions")
	}
	return data, nil
}
