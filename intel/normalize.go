package intel

import (
	"encoding/json"
	"time"

	"ctiscope/core"
)

// lastAnalysisTimeFormat renders provider epoch timestamps for display.
const lastAnalysisTimeFormat = "2006-01-02 15:04:05"

// Normalize maps a raw provider response into the canonical lookup record.
// A nil response or one without a data container yields nil: a valid
// "nothing to show" outcome, not an error.
//
// Detection counters default to 0 when absent. The attribute bag is
// provider-uniform across indicator types, so type-specific fields are
// extracted unconditionally and stay empty when irrelevant.
func Normalize(resp *Response, iocType core.IOCType) *core.Lookup {
	if resp == nil || resp.Data == nil {
		return nil
	}

	attrs := resp.Data.Attributes
	stats := attrs.LastAnalysisStats

	return &core.Lookup{
		Type:             iocType,
		Value:            resp.Data.ID,
		Harmless:         stats.Harmless,
		Malicious:        stats.Malicious,
		Suspicious:       stats.Suspicious,
		Undetected:       stats.Undetected,
		LastAnalysisDate: formatLastAnalysis(attrs.LastAnalysisDate),
		Reputation:       attrs.Reputation,
		Country:          attrs.Country,
		ASOwner:          attrs.ASOwner,
		Categories:       attrs.Categories,
		Tags:             attrs.Tags,
		TypeDescription:  attrs.TypeDescription,
		MeaningfulName:   attrs.MeaningfulName,
	}
}

// formatLastAnalysis converts the provider's epoch-seconds timestamp into a
// display string. A non-integer numeric value falls back to its raw string
// form; an absent value yields an empty string.
func formatLastAnalysis(raw json.Number) string {
	if raw.String() == "" {
		return ""
	}
	ts, err := raw.Int64()
	if err != nil {
		return raw.String()
	}
	return time.Unix(ts, 0).UTC().Format(lastAnalysisTimeFormat) + " UTC"
}
