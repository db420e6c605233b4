package usecase

import (
	"fmt"
	"strings"
)

var fullSeparator = "\n\n" + strings.Repeat("=", 50) + "\n\n"

// Artifact is one downloadable text file.
type Artifact struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Export lists every artifact the current script can produce.
func (s *Session) Export() ([]Artifact, error) {
	if s.st.Stage == StageNoInput {
		return nil, fmt.Errorf("export: %w (%s)", ErrInvalidStage, s.st.Stage)
	}
	name := s.st.Filename
	if name == "" {
		name = fallbackFilename(s.st.RawText)
	}
	working := s.st.FormattedText
	if working == "" {
		working = s.st.RawText
	}

	out := []Artifact{{Name: name + ".txt", Content: working}}
	if s.st.RewrittenText != "" {
		out = append(out, Artifact{Name: name + "_rewrite.txt", Content: s.st.RewrittenText})
	}
	for i, v := range s.st.Variations {
		out = append(out, Artifact{Name: fmt.Sprintf("%s_pattern%d.txt", name, i+1), Content: v})
	}
	if s.st.AdoptedScenario != "" {
		out = append(out, Artifact{Name: name + "_scenario.txt", Content: s.st.AdoptedScenario})
	}
	if s.st.Metadata != "" {
		out = append(out, Artifact{Name: name + "_full.txt", Content: fullText(s.st.AdoptedScenario, s.st.Metadata)})
	}
	return out, nil
}

// fullText joins the scenario and the SNS metadata under their headings.
func fullText(scenario, metadata string) string {
	var parts []string
	if scenario != "" {
		parts = append(parts, "【シナリオ】\n"+scenario)
	}
	if metadata != "" {
		parts = append(parts, "【SNSコンテンツ】\n"+metadata)
	}
	return strings.Join(parts, fullSeparator)
}
