// Package llm holds what the generation backends share: a client-side
// rate limiter and a pull-based stream over line-delimited HTTP bodies.
//
// Backend adapters live in subpackages:
//   - openai: OpenAI-compatible chat completions (OpenAI, DeepSeek, Moonshot)
//   - ollama: local Ollama models
package llm
