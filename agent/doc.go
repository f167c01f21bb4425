// Package agent defines agents (a role, a persona and a tool set) and the
// executors that run them. An Executor is the opaque boundary between the
// pipeline and the language model: a persona and a prompt in, text out.
//
// LLMExecutor supports tools through a plain-text protocol. The model
// replies with "Action:" and "Action Input:" lines to call a tool, receives
// an "Observation:" message with the result, and ends with "Final Answer:".
package agent
