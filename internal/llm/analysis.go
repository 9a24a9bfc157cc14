package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResult means the analysis reply could not be decoded into a
// CallAnalysis.
var ErrMalformedResult = errors.New("llm: malformed analysis result")

// RecommendationCount is how many improvements an analysis must carry.
const RecommendationCount = 3

type CallQuality string

const (
	QualityGood CallQuality = "good"
	QualityBad  CallQuality = "bad"
)

// ParseCallQuality accepts the English and Russian spellings.
func ParseCallQuality(s string) (CallQuality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good", "хороший":
		return QualityGood, nil
	case "bad", "плохой":
		return QualityBad, nil
	}
	return "", fmt.Errorf("%w: call_quality %q", ErrMalformedResult, s)
}

type CallAnalysis struct {
	Quality         CallQuality
	Analysis        string
	Recommendations []string
}

type rawAnalysis struct {
	CallQuality     string   `json:"call_quality"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

// ParseCallAnalysis decodes the model reply. Markdown fences and prose around
// the JSON object are tolerated; missing fields are not.
func ParseCallAnalysis(raw string) (CallAnalysis, error) {
	var out rawAnalysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		obj, ok := extractObject(raw)
		if !ok {
			return CallAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResult, err)
		}
		if err := json.Unmarshal([]byte(obj), &out); err != nil {
			return CallAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResult, err)
		}
	}

	quality, err := ParseCallQuality(out.CallQuality)
	if err != nil {
		return CallAnalysis{}, err
	}
	if strings.TrimSpace(out.Analysis) == "" {
		return CallAnalysis{}, fmt.Errorf("%w: analysis is empty", ErrMalformedResult)
	}
	if len(out.Recommendations) != RecommendationCount {
		return CallAnalysis{}, fmt.Errorf("%w: want %d recommendations, got %d", ErrMalformedResult, RecommendationCount, len(out.Recommendations))
	}
	recs := make([]string, 0, RecommendationCount)
	for i, r := range out.Recommendations {
		r = strings.TrimSpace(r)
		if r == "" {
			return CallAnalysis{}, fmt.Errorf("%w: recommendation %d is empty", ErrMalformedResult, i+1)
		}
		recs = append(recs, r)
	}
	return CallAnalysis{Quality: quality, Analysis: strings.TrimSpace(out.Analysis), Recommendations: recs}, nil
}

// extractObject returns the text between the first '{' and the last '}'.
func extractObject(raw string) (string, bool) {
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return raw[first : last+1], true
}
