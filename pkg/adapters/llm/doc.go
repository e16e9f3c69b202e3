// Package llm provides LLM client implementations for prompt-backed
// workflow steps.
//
// The factory creates clients based on provider configuration.
// Currently supports:
//   - Anthropic Claude
package llm
