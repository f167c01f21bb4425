// Package llm provides the chat-completion and embedding backends the
// agents run on.
//
// Universal types ([CompletionRequest], [CompletionResponse], [Message])
// are mapped to each provider by a [Dialect], similar to how database/sql
// works with drivers. [Adapter] composes the REST client with a dialect;
// the llm/ollama and llm/gemini packages register theirs at init. The
// OpenAI-compatible backend (OpenAI, Groq) lives in llm/openai and uses the
// go-openai SDK directly.
//
//	import _ "github.com/nyayagpt/nyaya/llm/ollama"
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: llm.DialectOllama,
//	    Model:   "qwen2.5:7b",
//	})
//
//	resp, err := adapter.Execute(ctx, llm.CompletionRequest{
//	    SystemPrompt: persona,
//	    Messages:     []llm.Message{{Role: llm.RoleUser, Content: prompt}},
//	})
//
// Every backend is a [Provider], so the provider middleware (logging,
// tracing, metrics, rate limiting) wraps them uniformly.
package llm
