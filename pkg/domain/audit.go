package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Event is one entry of the workspace audit trail. Events form a hash chain:
// each event stores the hash of its predecessor.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	GoalID    string         `json:"goal_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash generates a deterministic SHA256 hash of the event data.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(e.GoalID))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON renders metadata with sorted keys so hashes are stable.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')

	return string(ordered)
}

// UsageStats tracks plan generation volume and provider token consumption.
type UsageStats struct {
	Generations       int            `json:"generations"`
	FailedGenerations int            `json:"failed_generations"`
	LastGenerationAt  time.Time      `json:"last_generation_at"`
	ProviderStats     map[string]int `json:"provider_stats"`
}

// RecordGeneration adds one generation to the stats. Token usage is keyed
// "<model>:input" and "<model>:output".
func (u *UsageStats) RecordGeneration(model string, inputTokens, outputTokens int, failed bool, at time.Time) {
	if u.ProviderStats == nil {
		u.ProviderStats = make(map[string]int)
	}
	u.Generations++
	if failed {
		u.FailedGenerations++
	}
	u.LastGenerationAt = at
	if model == "" {
		model = "unknown"
	}
	u.ProviderStats[model+":input"] += inputTokens
	u.ProviderStats[model+":output"] += outputTokens
}
