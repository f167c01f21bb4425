// Package dag runs pipelines of agent tasks in dependency order.
//
// A [Pipeline] is built once by a [Builder] (or loaded from YAML through a
// [Definition]) and validated up front: unique ids, resolvable
// dependencies, no cycles, no forward references, parseable prompt
// templates and a single terminal node. Malformed pipelines fail with a
// GRAPH_DEFINITION error before anything runs.
//
// [Engine.Run] executes one invocation. Nodes are grouped into Kahn levels;
// each level finishes before the next starts. Within a level, runs of
// consecutive Concurrent nodes fan out on goroutines and Blocking nodes run
// alone, in declaration order. Each node's prompt is rendered from the
// pipeline inputs plus the outputs of its dependencies, then handed to an
// agent.Executor. Structured outputs are checked by package contract.
//
// [RetryExecutor] wraps a whole invocation: on a rate-limit error the run is
// discarded and restarted from scratch with exponential backoff.
package dag
