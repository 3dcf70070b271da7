package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// SlashCommands defines every command the bot registers.
var SlashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "model",
		Description: "Switch to a different model",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "model_name",
				Description: "Name of the model to switch to",
				Required:    true,
			},
		},
	},
	{
		Name:        "ask",
		Description: "Ask a question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "The question to ask",
				Required:    true,
			},
		},
	},
	{
		Name:        "profile",
		Description: "Switch to a different profile",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "profile_name",
				Description: "Name of the profile to switch to",
				Required:    true,
			},
		},
	},
	{
		Name:        "models",
		Description: "List available models",
	},
	{
		Name:        "resethistory",
		Description: "Clear conversation history",
	},
	{
		Name:        "help",
		Description: "Show help message",
	},
}

type commandEntry struct {
	adminOnly bool
	run       func(h *Handler, s Session, i *discordgo.InteractionCreate)
}

// commandHandlers maps command names to their permission level and handler.
// The permission check runs before the handler; a denied caller sees the
// standard embed and nothing else happens.
var commandHandlers = map[string]commandEntry{
	"model":        {adminOnly: true, run: (*Handler).handleModelCommand},
	"profile":      {adminOnly: true, run: (*Handler).handleProfileCommand},
	"models":       {adminOnly: true, run: (*Handler).handleModelsCommand},
	"resethistory": {adminOnly: true, run: (*Handler).handleResetHistoryCommand},
	"ask":          {adminOnly: false, run: (*Handler).handleAskCommand},
	"help":         {adminOnly: false, run: (*Handler).handleHelpCommand},
}

func (h *Handler) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(&DiscordSession{s}, i)
}

func (h *Handler) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	entry, ok := commandHandlers[name]
	if !ok {
		log.Printf("Unknown slash command: %s", name)
		return
	}

	if entry.adminOnly && interactionUserID(i) != h.adminID {
		h.respondEmbed(s, i, errorEmbed(permissionDeniedText))
		return
	}

	entry.run(h, s, i)
}

func (h *Handler) handleModelCommand(s Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Options[0].StringValue()

	if err := h.registry.SetActiveModel(name); err != nil {
		h.respondEmbed(s, i, errorEmbed(fmt.Sprintf("Model %q not found.", name)))
		return
	}
	log.Printf("Admin changed the model to %q", name)
	h.respondEmbed(s, i, successEmbed(fmt.Sprintf("Switched to %q model.", name)))
}

func (h *Handler) handleProfileCommand(s Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Options[0].StringValue()

	if err := h.registry.SetActiveProfile(name); err != nil {
		h.respondEmbed(s, i, errorEmbed(fmt.Sprintf("Profile %q not found.", name)))
		return
	}
	log.Printf("Admin changed the profile to %q", name)
	h.respondEmbed(s, i, successEmbed(fmt.Sprintf("Switched to %q profile.", name)))
}

func (h *Handler) handleModelsCommand(s Session, i *discordgo.InteractionCreate) {
	list := ""
	for _, name := range h.registry.ModelNames() {
		list += "* " + name + "\n"
	}
	h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Available Models",
		Description: list,
		Color:       colorGreen,
	})
}

func (h *Handler) handleResetHistoryCommand(s Session, i *discordgo.InteractionCreate) {
	if err := h.transcript.Reset(); err != nil {
		log.Printf("Error resetting transcript: %v", err)
		h.respondEmbed(s, i, errorEmbed(apologyText))
		return
	}
	h.respondEmbed(s, i, successEmbed("All conversation history has been cleared."))
}

// handleAskCommand runs the full pipeline against the question. It bypasses
// the channel/banlist gate and never appends the question to the transcript.
func (h *Handler) handleAskCommand(s Session, i *discordgo.InteractionCreate) {
	if len(h.askUsers) > 0 {
		userID := interactionUserID(i)
		if _, ok := h.askUsers[userID]; !ok && userID != h.adminID {
			h.respondEmbed(s, i, errorEmbed(permissionDeniedText))
			return
		}
	}

	question := i.ApplicationCommandData().Options[0].StringValue()

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		log.Printf("Error deferring ask response: %v", err)
		return
	}

	text, err := h.generate(question)
	if err != nil {
		log.Printf("Error generating response: %v", err)
		h.editInteractionEmbed(s, i, errorEmbed(apologyText))
		return
	}

	chunks := Chunk(Sanitize(text), MaxChunkSize)
	h.editInteractionEmbed(s, i, responseEmbed(chunks[0]))
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{responseEmbed(chunk)},
		}); err != nil {
			log.Printf("Error sending ask chunk: %v", err)
		}
	}
}

func (h *Handler) handleHelpCommand(s Session, i *discordgo.InteractionCreate) {
	h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Help",
		Description: "Available commands:",
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/model <model_name>", Value: "Switch to a different model."},
			{Name: "/profile <profile_name>", Value: "Switch to a different profile."},
			{Name: "/models", Value: "List available models."},
			{Name: "/ask <question>", Value: "Ask a question."},
			{Name: "/resethistory", Value: "Clear conversation history."},
			{Name: "/help", Value: "Show this help message."},
		},
	})
}

func (h *Handler) respondEmbed(s Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func (h *Handler) editInteractionEmbed(s Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// RegisterSlashCommands registers all slash commands with Discord.
func RegisterSlashCommands(s *discordgo.Session, guildID string) ([]*discordgo.ApplicationCommand, error) {
	log.Println("Registering slash commands...")

	registered := make([]*discordgo.ApplicationCommand, len(SlashCommands))
	for i, cmd := range SlashCommands {
		created, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%s' command: %v", cmd.Name, err)
			return nil, err
		}
		registered[i] = created
		log.Printf("Registered command: %s", cmd.Name)
	}
	return registered, nil
}

// UnregisterSlashCommands removes all registered slash commands.
func UnregisterSlashCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) error {
	log.Println("Unregistering slash commands...")

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID); err != nil {
			log.Printf("Cannot delete '%s' command: %v", cmd.Name, err)
			return err
		}
		log.Printf("Unregistered command: %s", cmd.Name)
	}
	return nil
}
