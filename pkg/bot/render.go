package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MaxChunkSize is Discord's message/embed description limit.
const MaxChunkSize = 2000

const (
	colorGreen = 0x00FF00
	colorRed   = 0xFF0000

	apologyText          = "Oops! I had trouble with that one. Let's try again?"
	permissionDeniedText = "You do not have permission to use this command."
)

// Sanitize escapes every mention trigger so relayed model output cannot ping
// users or roles.
func Sanitize(text string) string {
	return strings.ReplaceAll(text, "@", "[at]")
}

// Chunk splits text into pieces of at most size runes. Splitting is purely
// positional; nothing is trimmed, so the chunks concatenate back to the
// original text.
func Chunk(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func responseEmbed(text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Response", Description: text, Color: colorGreen}
}

func successEmbed(text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Success", Description: text, Color: colorGreen}
}

func errorEmbed(text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Error", Description: text, Color: colorRed}
}
