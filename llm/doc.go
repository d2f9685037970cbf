// Package llm carries the small set of provider-facing types that the
// context-management pipeline reports back to an LLM client, rather than
// representing within its own history: [CacheControlType] for annotating
// prompt-cache breakpoints, and [Usage] for reconciling a provider's
// reported token accounting against the pipeline's own estimates.
//
// Conversation content and message structure live in
// [github.com/deepnoodle-ai/contextcore/chatmsg] instead.
package llm
