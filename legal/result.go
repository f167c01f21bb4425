package legal

import (
	"cmp"
	stderrors "errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/nyayagpt/nyaya/contract"
	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/notify"
)

// Severities are the triage levels the advisory agent may report, plus
// DefaultSeverity for a triage that could not be read.
var Severities = []string{"Low", "Medium", "High", "Critical", DefaultSeverity}

// AdvisoryReport is the triage produced by the advisory stage.
type AdvisoryReport struct {
	Severity          string `json:"severity" validate:"omitempty,oneof=Low Medium High Critical Unknown"`
	LegalType         string `json:"legal_type" validate:"max=200"`
	RecommendedAction string `json:"recommended_action"`
	StepGuidance      string `json:"step_guidance"`
	// Defaulted lists the fields the model left out or got wrong.
	Defaulted []string `json:"defaulted,omitempty"`
}

// advisoryReport decodes the advisory node's output into a typed report.
// Fields the model left out take the defaults applied by the contract. When
// the typed decode fails the report is read from the parsed map instead, an
// unknown severity is replaced by DefaultSeverity, and the decode error is
// returned so it can be reported as a violation. An output that could not
// be parsed at all yields a report of defaults and no error, since the
// engine has already recorded that violation.
func advisoryReport(raw string, p *contract.Parsed) (AdvisoryReport, error) {
	if p == nil || p.Object() == nil {
		return AdvisoryReport{
			Severity:          DefaultSeverity,
			LegalType:         DefaultLegalType,
			RecommendedAction: DefaultRecommendedAction,
			StepGuidance:      DefaultStepGuidance,
			Defaulted:         slices.Clone(AdvisoryOutput.Required),
		}, nil
	}

	r, err := contract.Decode[AdvisoryReport](NodeAdvisory, raw)
	if err != nil {
		r = AdvisoryReport{}
	}
	r.Severity = cmp.Or(r.Severity, p.Field("severity"))
	r.LegalType = cmp.Or(r.LegalType, p.Field("legal_type"))
	r.RecommendedAction = cmp.Or(r.RecommendedAction, p.Field("recommended_action"))
	r.StepGuidance = cmp.Or(r.StepGuidance, p.Field("step_guidance"))
	r.Defaulted = slices.Clone(p.Defaulted)

	if !slices.Contains(Severities, r.Severity) {
		r.Severity = DefaultSeverity
		r.Defaulted = append(r.Defaulted, "severity")
	}
	return r, err
}

// NotificationDraft is the lawyer outreach email written by the end-to-end
// pipeline.
type NotificationDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Violation is a structured output that did not meet its contract. Raw is
// the model's text, for showing to the user as is.
type Violation struct {
	Node  string `json:"node"`
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

func violations(res *dag.Result) []Violation {
	if len(res.Violations) == 0 {
		return nil
	}
	out := make([]Violation, 0, len(res.Violations))
	for _, err := range res.Violations {
		out = append(out, violation(err))
	}
	return out
}

func violation(err error) Violation {
	v := Violation{Error: err.Error()}
	v.Node, _ = errors.FailedNode(err)
	v.Raw, _ = errors.RawOutput(err)
	return v
}

// AnalyzeResult is the outcome of the advisory stage. It carries everything
// the drafting stage needs; see DraftRequest.
type AnalyzeResult struct {
	RunID string `json:"run_id"`
	// AdvisoryJSON is the advisory output with code fences removed.
	AdvisoryJSON string         `json:"advisory_json"`
	Advisory     AdvisoryReport `json:"advisory"`
	// CaseSummary is the raw intake output.
	CaseSummary string      `json:"case_summary"`
	Language    Language    `json:"language_preference"`
	Violations  []Violation `json:"violations,omitempty"`
}

// DraftRequest returns the request for the drafting stage of this case.
func (r *AnalyzeResult) DraftRequest() DraftRequest {
	return DraftRequest{
		CaseSummary:        r.CaseSummary,
		AdvisoryAnalysis:   r.AdvisoryJSON,
		LanguagePreference: string(r.Language),
	}
}

// DraftResult is the outcome of the drafting stage.
type DraftResult struct {
	RunID      string      `json:"run_id"`
	Document   string      `json:"document"`
	Sections   []Section   `json:"sections,omitempty"`
	Precedents string      `json:"precedents,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// RunResult is the outcome of the end-to-end pipeline.
type RunResult struct {
	RunID        string            `json:"run_id"`
	Document     string            `json:"document"`
	Notification NotificationDraft `json:"notification"`
	Sections     []Section         `json:"sections,omitempty"`
	Precedents   string            `json:"precedents,omitempty"`
	// EmailResult is set when the document was sent to a lawyer.
	EmailResult *EmailResult `json:"email_result,omitempty"`
	Violations  []Violation  `json:"violations,omitempty"`
}

// EmailResult reports a lawyer notification. Code is NOTIFICATION_FAILED
// when the send failed.
type EmailResult struct {
	To    string           `json:"to"`
	OK    bool             `json:"ok"`
	Code  errors.ErrorCode `json:"code,omitempty"`
	Error string           `json:"error,omitempty"`
}

func emailResult(to string, r notify.Result) *EmailResult {
	out := &EmailResult{To: to, OK: r.OK, Error: r.Error}
	var appErr *errors.AppError
	if stderrors.As(r.Err(), &appErr) {
		out.Code = appErr.Code
	}
	return out
}

// Section is one retrieved statute passage.
type Section struct {
	Section     string `json:"section,omitempty"`
	Page        string `json:"page,omitempty"`
	Language    string `json:"language"`
	Granularity string `json:"granularity"`
	Content     string `json:"content"`
}

func sections(res *dag.Result) []Section {
	p, ok := res.ParsedOutput(NodeSections)
	if !ok {
		return nil
	}
	out := make([]Section, 0, len(p.Objects))
	for _, obj := range p.Objects {
		out = append(out, Section{
			Section:     str(obj["section"]),
			Page:        str(obj["page"]),
			Language:    str(obj["language"]),
			Granularity: str(obj["granularity"]),
			Content:     str(obj["content"]),
		})
	}
	return out
}

// str renders a JSON scalar. Models often return section numbers as numbers.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
