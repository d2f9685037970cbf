// Package contextcore is the context-window management core of a
// conversational agent: it keeps the message history sent to an LLM within a
// token budget while preserving the information needed to continue a
// multi-turn, tool-using task.
//
// A turn's preparation runs as a fixed pipeline over an input [chatmsg.History]:
// tool-result compaction, observation masking, a compaction trigger and (when
// triggered) a history compactor, a goal reminder, scratchpad injection, tool
// retrieval, and prompt-cache hinting. [ContextManager] wires these stages
// together except tool retrieval, which callers run separately; each stage
// is also usable standalone.
//
// The LLM transport, tool execution, and the agent's own planning loop are
// out of scope — this package only consumes the small [LLMClient] interface
// it needs to request a summary.
package contextcore
