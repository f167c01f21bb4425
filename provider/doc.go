// Package provider defines the RequestResponse abstraction shared by the
// model, embedding and transcription clients, plus composable middleware:
// logging, tracing, metrics and admission control (rate limit and bulkhead).
//
//	p = provider.Chain(
//	    provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](log),
//	    provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse]("llm"),
//	)(provider.WithResilience(p, cfg))
package provider
