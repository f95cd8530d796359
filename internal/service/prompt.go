package service

import "fmt"

// Instruction-format prompt for Mistral-style instruct models. The system
// half fixes the persona, demands citations, and tells the model what to
// say when the context is not enough.
const promptTemplate = `<s>[INST] You are a helpful assistant that answers questions based on Reddit discussions.
Use the following Reddit posts as context to answer the user's question.
If the context doesn't contain enough information, just say you don't have enough information.
Always cite which posts you're drawing information from when appropriate.

User question: %s

Context from Reddit:
%s [/INST]`

func BuildPrompt(query, contextBlock string) string {
	return fmt.Sprintf(promptTemplate, query, contextBlock)
}
