package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/archon-hq/archon/internal/domain/search/filter"
	"github.com/archon-hq/archon/internal/vecstore"
)

const (
	// vectorField is the hash field holding the embedding blob; the index
	// schema names it "vector" and we never return it in payloads.
	vectorField = "vector"
	// scoreField is the KNN distance alias produced by FT.SEARCH.
	scoreField = "__vector_score"
)

// Search runs a KNN vector similarity search via FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *vecstore.SearchQuery) (*vecstore.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	filterStr := buildFilter(q.Filter)

	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB]", q.Limit, vectorField)
	var queryStr string
	if filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	} else {
		queryStr = fmt.Sprintf("*=>%s", knnPart)
	}

	args := []string{
		s.indexName(q.Collection), queryStr,
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index") {
			return nil, &vecstore.Error{Op: vecstore.OpSearch, Err: vecstore.ErrCollectionNotFound}
		}
		return nil, &vecstore.Error{Op: vecstore.OpSearch, Err: err}
	}

	return s.parseKNNResult(raw, q.Collection)
}

func (s *Store) indexName(collection string) string {
	return s.prefix + collection + ":idx"
}

func (s *Store) keyPrefix(collection string) string {
	return s.prefix + collection + ":"
}

// --- Result parsing ---

func (s *Store) parseKNNResult(raw []rueidis.RedisMessage, collection string) (*vecstore.SearchResult, error) {
	if len(raw) == 0 {
		return &vecstore.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &vecstore.SearchResult{}, nil
	}

	entries := make([]vecstore.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := vecstore.SearchEntry{
			ID:      strings.TrimPrefix(key, s.keyPrefix(collection)),
			Payload: parsePayload(fields),
		}

		if scoreStr, ok := entry.Payload[scoreField]; ok {
			if dist, ok := scoreStr.(float64); ok {
				entry.Score = max(0, 1.0-dist) // cosine distance → similarity, clamped to [0,1]
			}
			delete(entry.Payload, scoreField)
		}

		entries = append(entries, entry)
	}

	return &vecstore.SearchResult{Total: int(total), Entries: entries}, nil
}

// parsePayload converts the flat field/value reply into a payload map.
// Values that parse as numbers come back as float64, everything else as
// string. The embedding blob never enters the payload.
func parsePayload(fields []rueidis.RedisMessage) map[string]any {
	m := make(map[string]any, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		if name == vectorField {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			m[name] = f
		} else {
			m[name] = value
		}
	}
	return m
}

// --- Filter building ---

// buildFilter translates the conjunction into an FT.SEARCH pre-filter string.
func buildFilter(f filter.Filter) string {
	if f.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(f.Conditions()))
	for _, cond := range f.Conditions() {
		parts = append(parts, buildTagFilter(cond.Key(), cond.Value()))
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
