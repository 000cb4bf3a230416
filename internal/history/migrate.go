package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"placementprep/internal/analyzer"
	"placementprep/internal/errors"
	"placementprep/internal/types"
)

// legacyFields maps field names written by older versions onto the canonical ones
var legacyFields = []struct{ from, to string }{
	{"readinessScore", "baseScore"},
	{"liveScore", "finalScore"},
	{"skillConfidence", "skillConfidenceMap"},
	{"roundMapping", "rounds"},
	{"plan7Days", "plan"},
}

// legacyChecklistKey held per-round checklists keyed "Round 1".."Round 4"
const legacyChecklistKey = "checklist"

// Migrate rewrites a decoded document onto the canonical entry schema. Legacy
// fields are renamed unless the canonical field is already present, null
// optional fields are dropped, updatedAt defaults to createdAt and rounds
// without a checklist get one. The input document is not modified.
func Migrate(doc map[string]any) map[string]any {
	out := maps.Clone(doc)
	if out == nil {
		out = map[string]any{}
	}

	for _, f := range legacyFields {
		legacy, ok := out[f.from]
		if !ok {
			continue
		}
		delete(out, f.from)
		if current, exists := out[f.to]; !exists || current == nil {
			out[f.to] = legacy
		}
	}

	legacyChecklist, _ := out[legacyChecklistKey].(map[string]any)
	delete(out, legacyChecklistKey)

	for key, value := range out {
		if value == nil && key != "id" && key != "createdAt" {
			delete(out, key)
		}
	}

	if _, ok := out["updatedAt"]; !ok {
		if createdAt, ok := out["createdAt"]; ok {
			out["updatedAt"] = createdAt
		}
	}

	if rounds, ok := out["rounds"].([]any); ok {
		out["rounds"] = migrateRounds(rounds, legacyChecklist)
	}

	return out
}

func migrateRounds(rounds []any, legacyChecklist map[string]any) []any {
	migrated := make([]any, len(rounds))
	for i, r := range rounds {
		round, ok := r.(map[string]any)
		if !ok {
			migrated[i] = r
			continue
		}
		if _, has := round["checklist"]; has {
			migrated[i] = round
			continue
		}

		round = maps.Clone(round)
		if items, ok := legacyChecklist[fmt.Sprintf("Round %d", i+1)].([]any); ok {
			round["checklist"] = items
		} else {
			description, _ := round["description"].(string)
			round["checklist"] = toAnySlice(analyzer.Checklist(description, analyzer.ChecklistSeparator(i)))
		}
		migrated[i] = round
	}
	return migrated
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// DecodeEntry parses one persisted record, migrates and validates it, and
// fills the derived fields older records lack.
func DecodeEntry(data []byte) (types.HistoryEntry, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return types.HistoryEntry{}, errors.NewValidationError(errors.ErrCodeInvalidEntry, "history entry is not a JSON object", err)
	}

	migrated := Migrate(doc)
	if err := ValidateEntry(migrated); err != nil {
		return types.HistoryEntry{}, errors.NewValidationError(errors.ErrCodeInvalidEntry, "history entry failed validation", err).
			WithContext("entry_id", migrated["id"])
	}

	canonical, err := json.Marshal(migrated)
	if err != nil {
		return types.HistoryEntry{}, errors.NewInternalError(errors.ErrCodeInvalidEntry, "failed to re-encode history entry", err)
	}

	var entry types.HistoryEntry
	if err := json.Unmarshal(canonical, &entry); err != nil {
		return types.HistoryEntry{}, errors.NewValidationError(errors.ErrCodeInvalidEntry, "history entry has unexpected field types", err).
			WithContext("entry_id", migrated["id"])
	}

	// Re-encoding a map sorts its keys, so category order comes from the raw record.
	var ordered struct {
		ExtractedSkills types.ExtractedSkills `json:"extractedSkills"`
	}
	if err := json.Unmarshal(data, &ordered); err != nil {
		return types.HistoryEntry{}, errors.NewValidationError(errors.ErrCodeInvalidEntry, "history entry has malformed extractedSkills", err).
			WithContext("entry_id", entry.ID)
	}
	entry.ExtractedSkills = normalizeSkills(ordered.ExtractedSkills)

	if entry.SkillConfidenceMap == nil {
		entry.SkillConfidenceMap = types.SkillConfidenceMap{}
	}
	if _, ok := migrated["finalScore"]; !ok {
		entry.FinalScore = analyzer.AdjustedScore(entry.BaseScore, entry.SkillConfidenceMap)
	}
	if _, ok := migrated["companyIntel"]; !ok {
		entry.CompanyIntel = analyzer.ClassifyCompany(entry.Company)
	} else if entry.CompanyIntel.Color == "" {
		entry.CompanyIntel.Color = analyzer.IntelColor(entry.CompanyIntel.Type)
	}

	return entry, nil
}

// EncodeEntry serializes an entry in the canonical schema
func EncodeEntry(entry types.HistoryEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeStorageFailed, "failed to encode history entry", err).
			WithContext("entry_id", entry.ID)
	}
	return data, nil
}

// normalizeSkills drops empty categories; an entry left with none gets the fallback
func normalizeSkills(s types.ExtractedSkills) types.ExtractedSkills {
	var kept []types.CategoryMatch
	for category, skills := range s.All() {
		if len(skills) > 0 {
			kept = append(kept, types.CategoryMatch{Category: category, Skills: skills})
		}
	}
	if len(kept) == 0 {
		kept = append(kept, types.CategoryMatch{
			Category: analyzer.FallbackCategory,
			Skills:   []string{analyzer.FallbackSkill},
		})
	}
	return types.NewExtractedSkills(kept...)
}
