// Package prompt turns the layered context (transcript, profile behavior,
// user input) into backend payload shapes. It performs no I/O.
package prompt

import "fmt"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMessages builds the chat-shaped payload: the rendered transcript and
// the profile's behavior prompt as system context, then the user's text.
func ChatMessages(transcriptText, behaviorPrompt, userText string) []Message {
	return []Message{
		{Role: "system", Content: transcriptText},
		{Role: "system", Content: behaviorPrompt},
		{Role: "user", Content: userText},
	}
}

// Completion flattens the same context into a single prompt string for
// completion-style endpoints.
func Completion(transcriptText, behaviorPrompt, userText string) string {
	return fmt.Sprintf("%s\n%s\n\n%s", transcriptText, behaviorPrompt, userText)
}
