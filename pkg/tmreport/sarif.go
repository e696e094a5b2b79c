package tmreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmrun"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes a diagnostic code. TypMark has no rule registry,
// only the fixed tmdiag.Code list, so each distinct Code becomes exactly
// one rule entry.
type SARIFRule struct {
	ID               string               `json:"id"`
	ShortDescription SARIFMultiformatText `json:"shortDescription,omitempty"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region.
//
// SARIF regions are 1-based; tmspan.Position is 0-based, so conversion
// adds one to both line and column here.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIFReporter formats results as SARIF.
type SARIFReporter struct {
	opts Options
	out  io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{opts: opts, out: opts.Writer}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *tmrun.Result) (int, error) {
	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.out)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	return len(output.Runs[0].Results), nil
}

func (r *SARIFReporter) buildOutput(result *tmrun.Result) *SARIFOutput {
	output := &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{
				Driver: SARIFDriver{
					Name:           "typmark",
					Version:        "0.1.0",
					InformationURI: "https://github.com/miko-misa/typmark",
					Rules:          make([]SARIFRule, 0),
				},
			},
			Results: make([]SARIFResult, 0),
		}},
	}

	if result == nil {
		return output
	}

	rulesSeen := make(map[tmdiag.Code]bool)

	for _, file := range result.Files {
		if file.Result == nil {
			continue
		}

		for _, diag := range file.Result.Diagnostics {
			if !rulesSeen[diag.Code] {
				output.Runs[0].Tool.Driver.Rules = append(output.Runs[0].Tool.Driver.Rules, SARIFRule{
					ID:               string(diag.Code),
					ShortDescription: SARIFMultiformatText{Text: diag.Message},
					DefaultConfig:    &SARIFRuleConfig{Level: severityToSARIFLevel(diag.Severity)},
				})
				rulesSeen[diag.Code] = true
			}

			output.Runs[0].Results = append(output.Runs[0].Results, SARIFResult{
				RuleID: string(diag.Code),
				Level:  severityToSARIFLevel(diag.Severity),
				Message: SARIFMessage{
					Text: diag.Message,
				},
				Locations: []SARIFLocation{{
					PhysicalLocation: SARIFPhysicalLocation{
						ArtifactLocation: SARIFArtifactLocation{URI: file.Path},
						Region: SARIFRegion{
							StartLine:   diag.Range.Start.Line + 1,
							StartColumn: diag.Range.Start.Character + 1,
							EndLine:     diag.Range.End.Line + 1,
							EndColumn:   diag.Range.End.Character + 1,
						},
					},
				}},
			})
		}
	}

	return output
}

func severityToSARIFLevel(severity tmdiag.Severity) string {
	switch severity {
	case tmdiag.SeverityError:
		return "error"
	case tmdiag.SeverityWarning:
		return "warning"
	default:
		return "warning"
	}
}
