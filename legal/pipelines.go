package legal

import (
	"github.com/nyayagpt/nyaya/contract"
	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/notify"
)

// Pipeline names.
const (
	PipelineEndToEnd = "legal-end-to-end"
	PipelineAdvisory = "legal-advisory"
	PipelineDrafting = "legal-drafting"
)

// Node ids.
const (
	NodeIntake       = "intake"
	NodeSections     = "sections"
	NodePrecedents   = "precedents"
	NodeNotification = "notification"
	NodeDocument     = "document"
	NodeAdvisory     = "advisory"
)

// Advisory defaults shown when the model leaves a field out.
const (
	DefaultSeverity          = "Unknown"
	DefaultLegalType         = "General"
	DefaultRecommendedAction = "Review Case"
	DefaultStepGuidance      = "Please consult a lawyer."
)

// Output contracts of the structured nodes.
var (
	IntakeOutput = contract.Structured("case_type", "legal_domain", "summary").WithDefaults(map[string]any{
		"case_type":    "Unknown",
		"legal_domain": "General",
	})
	SectionsOutput = contract.StructuredArray("content", "language", "granularity").WithDefaults(map[string]any{
		"language":    "unknown",
		"granularity": "unknown",
	})
	NotificationOutput = contract.Structured("subject", "body").WithDefaults(map[string]any{
		"subject": notify.DefaultSubject,
	})
	AdvisoryOutput = contract.Structured("severity", "legal_type", "recommended_action", "step_guidance").WithDefaults(map[string]any{
		"severity":           DefaultSeverity,
		"legal_type":         DefaultLegalType,
		"recommended_action": DefaultRecommendedAction,
		"step_guidance":      DefaultStepGuidance,
	})
)

// Pipelines holds the three built topologies.
type Pipelines struct {
	EndToEnd *dag.Pipeline
	Advisory *dag.Pipeline
	Drafting *dag.Pipeline
}

// BuildPipelines builds every topology for a.
func BuildPipelines(a Agents) (*Pipelines, error) {
	e2e, err := EndToEnd(a)
	if err != nil {
		return nil, err
	}
	adv, err := Advisory(a)
	if err != nil {
		return nil, err
	}
	draft, err := Drafting(a)
	if err != nil {
		return nil, err
	}
	return &Pipelines{EndToEnd: e2e, Advisory: adv, Drafting: draft}, nil
}

// EndToEnd builds intake -> {sections, precedents} -> {notification, document}.
// The document is the artifact.
func EndToEnd(a Agents) (*dag.Pipeline, error) {
	return dag.NewBuilder(PipelineEndToEnd).
		Add(
			dag.TaskNode{ID: NodeIntake, Agent: a.Intake, Prompt: intakePrompt, Output: IntakeOutput},
			dag.TaskNode{ID: NodeSections, Agent: a.IPC, Prompt: sectionsPrompt, Output: SectionsOutput,
				DependsOn: []string{NodeIntake}, Mode: dag.Concurrent},
			dag.TaskNode{ID: NodePrecedents, Agent: a.Precedent, Prompt: precedentsPrompt,
				DependsOn: []string{NodeIntake}, Mode: dag.Concurrent},
			dag.TaskNode{ID: NodeNotification, Agent: a.Notifier, Prompt: notificationPrompt, Output: NotificationOutput,
				DependsOn: []string{NodeIntake, NodeSections}},
			dag.TaskNode{ID: NodeDocument, Agent: a.Drafter, Prompt: documentPrompt,
				DependsOn: []string{NodeIntake, NodeSections, NodePrecedents}, Terminal: true},
		).
		Decorate(LanguageDecorator()).
		Build()
}

// Advisory builds the first stage of the split topology: intake -> advisory.
func Advisory(a Agents) (*dag.Pipeline, error) {
	return dag.NewBuilder(PipelineAdvisory).
		Add(
			dag.TaskNode{ID: NodeIntake, Agent: a.Intake, Prompt: intakePrompt, Output: IntakeOutput},
			dag.TaskNode{ID: NodeAdvisory, Agent: a.Advisory, Prompt: advisoryPrompt, Output: AdvisoryOutput,
				DependsOn: []string{NodeIntake}},
		).
		Decorate(LanguageDecorator()).
		Build()
}

// Drafting builds the second stage of the split topology:
// {sections, precedents} -> document. It reads the advisory stage's results
// from the case_summary and advisory_analysis inputs.
func Drafting(a Agents) (*dag.Pipeline, error) {
	return dag.NewBuilder(PipelineDrafting).
		Add(
			dag.TaskNode{ID: NodeSections, Agent: a.IPC, Prompt: sectionsPrompt, Output: SectionsOutput, Mode: dag.Concurrent},
			dag.TaskNode{ID: NodePrecedents, Agent: a.Precedent, Prompt: precedentsPrompt, Mode: dag.Concurrent},
			dag.TaskNode{ID: NodeDocument, Agent: a.Drafter, Prompt: documentPrompt,
				DependsOn: []string{NodeSections, NodePrecedents}, Terminal: true},
		).
		Decorate(LanguageDecorator()).
		Build()
}
