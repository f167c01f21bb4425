package legal

import (
	"context"
	"strings"

	"github.com/nyayagpt/nyaya/contract"
	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/notify"
	"github.com/nyayagpt/nyaya/util"
	"github.com/nyayagpt/nyaya/validation"
)

// Pipeline inputs besides InputLanguage.
const (
	InputUserInput        = "user_input"
	InputCaseSummary      = "case_summary"
	InputAdvisoryAnalysis = "advisory_analysis"
	InputSearchHint       = "search_hint"
)

// AnalyzeRequest starts the split topology.
type AnalyzeRequest struct {
	UserInput          string `json:"user_input" validate:"required"`
	LanguagePreference string `json:"language_preference"`
}

// DraftRequest runs the drafting stage on the results of Analyze.
type DraftRequest struct {
	CaseSummary        string `json:"case_summary" validate:"required"`
	AdvisoryAnalysis   string `json:"advisory_analysis" validate:"required"`
	LanguagePreference string `json:"language_preference"`
}

// RunRequest runs the end-to-end topology. When LawyerEmail is set the
// finished document is emailed to it.
type RunRequest struct {
	UserInput          string `json:"user_input" validate:"required"`
	LanguagePreference string `json:"language_preference"`
	LawyerEmail        string `json:"lawyer_email" validate:"omitempty,email"`
}

// Service runs the legal pipelines.
type Service struct {
	runner    dag.Runner
	pipelines *Pipelines
	notifier  notify.Sender
	log       *logger.Logger
}

// NewService creates a Service. runner is normally a dag.RetryExecutor.
// notifier may be nil, in which case Notify always fails.
func NewService(runner dag.Runner, pipelines *Pipelines, notifier notify.Sender) *Service {
	return &Service{
		runner:    runner,
		pipelines: pipelines,
		notifier:  notifier,
		log:       logger.WithComponent("legal"),
	}
}

// Pipelines returns the pipelines the service runs.
func (s *Service) Pipelines() *Pipelines { return s.pipelines }

// inputs returns a full input map; every prompt placeholder has a value.
func inputs(lang Language, kv ...string) map[string]string {
	m := map[string]string{
		InputUserInput:        "",
		InputCaseSummary:      "",
		InputAdvisoryAnalysis: "",
		InputLanguage:         string(lang),
		InputSearchHint:       lang.SearchHint(),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

// Analyze runs the advisory stage.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	req.UserInput = util.SanitizeText(req.UserInput)
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	lang, err := ParseLanguage(req.LanguagePreference)
	if err != nil {
		return nil, err
	}

	res, err := s.runner.Run(ctx, s.pipelines.Advisory, inputs(lang, InputUserInput, req.UserInput))
	if err != nil {
		return nil, err
	}
	s.report(res)

	raw := res.Outputs[NodeAdvisory]
	parsed, _ := res.ParsedOutput(NodeAdvisory)
	report, decodeErr := advisoryReport(raw, parsed)

	out := &AnalyzeResult{
		RunID:        res.RunID,
		AdvisoryJSON: contract.StripFences(raw),
		Advisory:     report,
		CaseSummary:  res.Outputs[NodeIntake],
		Language:     lang,
		Violations:   violations(res),
	}
	if decodeErr != nil {
		s.log.WithContext(ctx).Warn("advisory output failed validation, using defaults",
			logger.Fields(logger.FieldRunID, res.RunID, logger.FieldError, decodeErr.Error()))
		out.Violations = append(out.Violations, violation(decodeErr))
	}
	return out, nil
}

// Draft runs the drafting stage.
func (s *Service) Draft(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	req.CaseSummary = util.SanitizeText(req.CaseSummary)
	req.AdvisoryAnalysis = util.SanitizeText(req.AdvisoryAnalysis)
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	lang, err := ParseLanguage(req.LanguagePreference)
	if err != nil {
		return nil, err
	}

	res, err := s.runner.Run(ctx, s.pipelines.Drafting, inputs(lang,
		InputCaseSummary, req.CaseSummary,
		InputAdvisoryAnalysis, req.AdvisoryAnalysis,
	))
	if err != nil {
		return nil, err
	}
	s.report(res)

	return &DraftResult{
		RunID:      res.RunID,
		Document:   res.Artifact,
		Sections:   sections(res),
		Precedents: res.Outputs[NodePrecedents],
		Violations: violations(res),
	}, nil
}

// Run runs the end-to-end pipeline, then emails the document when a lawyer
// address was given. A failed email is reported in the result.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	req.UserInput = util.SanitizeText(req.UserInput)
	req.LawyerEmail = strings.TrimSpace(req.LawyerEmail)
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	lang, err := ParseLanguage(req.LanguagePreference)
	if err != nil {
		return nil, err
	}

	res, err := s.runner.Run(ctx, s.pipelines.EndToEnd, inputs(lang, InputUserInput, req.UserInput))
	if err != nil {
		return nil, err
	}
	s.report(res)

	out := &RunResult{
		RunID:      res.RunID,
		Document:   res.Artifact,
		Sections:   sections(res),
		Precedents: res.Outputs[NodePrecedents],
		Violations: violations(res),
	}
	if p, ok := res.ParsedOutput(NodeNotification); ok {
		out.Notification = NotificationDraft{Subject: p.Field("subject"), Body: p.Field("body")}
	} else {
		out.Notification = NotificationDraft{Subject: notify.DefaultSubject, Body: res.Outputs[NodeNotification]}
	}

	if req.LawyerEmail != "" {
		body := out.Document
		if out.Notification.Body != "" {
			body = out.Notification.Body + "\n\n---\n\n" + out.Document
		}
		r := s.Notify(ctx, notify.Message{To: req.LawyerEmail, Subject: out.Notification.Subject, Body: body})
		out.EmailResult = emailResult(req.LawyerEmail, r)
	}
	return out, nil
}

// Notify sends msg. It never returns an error; failures are in the Result.
func (s *Service) Notify(ctx context.Context, msg notify.Message) notify.Result {
	if s.notifier == nil {
		return notify.Result{Error: notify.ErrMissingConfig}
	}
	r := s.notifier.Send(ctx, msg)
	if !r.OK {
		s.log.WithContext(ctx).Warn("lawyer notification failed", logger.Fields("to", msg.To, logger.FieldError, r.Error))
	}
	return r
}

func (s *Service) report(res *dag.Result) {
	s.log.Info("pipeline completed", logger.Fields(
		logger.FieldPipeline, res.Pipeline,
		logger.FieldRunID, res.RunID,
		logger.FieldDuration, res.Duration.Milliseconds(), "violations", len(res.Violations)))
}
