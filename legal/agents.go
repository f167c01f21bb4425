package legal

import (
	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/dag"
)

// Agent names in the registry returned by Registry.
const (
	AgentIntake    = "intake"
	AgentIPC       = "ipc_section"
	AgentPrecedent = "precedent"
	AgentNotifier  = "lawyer_notifier"
	AgentDrafter   = "drafter"
	AgentAdvisory  = "advisory"
)

// Tools are the capabilities handed to the agents that use them. Nil tools
// are left out.
type Tools struct {
	IPCSearch       agent.Tool
	PrecedentSearch agent.Tool
	Email           agent.Tool
}

// Agents is the cast of the legal pipelines.
type Agents struct {
	Intake    agent.Agent
	IPC       agent.Agent
	Precedent agent.Agent
	Notifier  agent.Agent
	Drafter   agent.Agent
	Advisory  agent.Agent
}

// NewAgents returns the standard personas with tools attached.
func NewAgents(tools Tools) Agents {
	a := Agents{
		Intake: agent.Agent{
			Role: "Case Intake Agent",
			Goal: "Understand the user's legal problem, identify the core legal issue and classify its legal domain.",
			Backstory: "You are an experienced paralegal at an Indian legal aid clinic. You listen carefully to people " +
				"describing their problems in plain English or Hindi and turn them into precise, structured case summaries.",
		},
		IPC: agent.Agent{
			Role: "IPC Section Agent",
			Goal: "Find the sections of the Indian Penal Code that apply to the case.",
			Backstory: "You are a criminal law researcher who knows the Indian Penal Code in English and Hindi. " +
				"You always search the IPC database instead of quoting sections from memory.",
		},
		Precedent: agent.Agent{
			Role: "Legal Precedent Agent",
			Goal: "Find Indian court judgments relevant to the case and explain why they matter.",
			Backstory: "You are a legal researcher who tracks Supreme Court and High Court judgments and relies only " +
				"on trusted Indian legal sources.",
		},
		Notifier: agent.Agent{
			Role: "Lawyer Notifier Agent",
			Goal: "Write a concise, professional consultation request to a local lawyer.",
			Backstory: "You are a legal assistant who drafts clear outreach emails that let a lawyer grasp a case " +
				"and its applicable sections at a glance.",
		},
		Drafter: agent.Agent{
			Role: "Legal Drafter Agent",
			Goal: "Draft a formal legal document, such as an FIR or a legal notice, that the user can submit.",
			Backstory: "You are a drafting advocate who writes formal complaints and notices for Indian police " +
				"stations and courts, in plain and precise language.",
		},
		Advisory: agent.Agent{
			Role: "Legal Advisory Agent",
			Goal: "Provide clear, actionable legal advice and next steps based on the case intake, identified IPC " +
				"sections, and relevant precedents in the user's preferred language.",
			Backstory: "You are a client-facing advisor who explains legal implications plainly and proposes a practical plan. " +
				"You synthesize upstream analysis into concise recommendations, potential risks, and immediate actions. " +
				"You tailor tone and language (English/Hindi) to the user's preference and avoid legalese unless necessary.",
		},
	}
	if tools.IPCSearch != nil {
		a.IPC = a.IPC.WithTools(tools.IPCSearch)
	}
	if tools.PrecedentSearch != nil {
		a.Precedent = a.Precedent.WithTools(tools.PrecedentSearch)
	}
	if tools.Email != nil {
		a.Notifier = a.Notifier.WithTools(tools.Email)
	}
	return a
}

// Registry registers the agents under their Agent* names for YAML pipeline
// definitions.
func (a Agents) Registry() *dag.Registry {
	reg := dag.NewRegistry()
	reg.Register(AgentIntake, a.Intake)
	reg.Register(AgentIPC, a.IPC)
	reg.Register(AgentPrecedent, a.Precedent)
	reg.Register(AgentNotifier, a.Notifier)
	reg.Register(AgentDrafter, a.Drafter)
	reg.Register(AgentAdvisory, a.Advisory)
	return reg
}
