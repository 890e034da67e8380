package job

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"getjobs/internal/domain/job"
)

const (
	searchCachePrefix = "jobs:search:"
	// searchGenKey sits outside searchCachePrefix so pattern deletes keep it.
	searchGenKey = "jobs:search-gen"
)

type searchCacheKeyInput struct {
	Gen      int64  `json:"gen"`
	Search   string `json:"search"`
	Location string `json:"location"`
	Remote   bool   `json:"remote"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

func normalizeSearchValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// SearchCacheKey is stable across casing and whitespace differences. Keys
// from older generations are never read again once gen moves on.
func SearchCacheKey(gen int64, f job.SearchFilter) string {
	in := searchCacheKeyInput{
		Gen:      gen,
		Search:   normalizeSearchValue(f.SearchTerm),
		Location: normalizeSearchValue(f.Location),
		Remote:   f.RemoteOnly,
		Limit:    f.Limit,
		Offset:   f.Offset,
	}
	if in.Remote {
		in.Location = ""
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return searchCachePrefix + hex.EncodeToString(sum[:])
}
