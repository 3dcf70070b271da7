package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"treebot/pkg/audit"
	"treebot/pkg/backend"
	"treebot/pkg/prompt"
	"treebot/pkg/registry"
	"treebot/pkg/transcript"
)

// Session abstracts discordgo.Session for testing.
type Session interface {
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSession adapts discordgo.Session to the Session interface.
type DiscordSession struct {
	*discordgo.Session
}

func (s *DiscordSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return s.Session.Channel(channelID, options...)
}

// Config is the deployment-scoped identity and gating configuration.
type Config struct {
	AdminUserID    string
	TargetChannels []string
	AllowedGuilds  []string
	AskWhitelist   []string
	RequestTimeout time.Duration
}

type Handler struct {
	registry   *registry.Store
	transcript transcript.Store
	auditLog   *audit.Log
	router     backend.Generator

	botID          string
	adminID        string
	channels       map[string]struct{}
	guilds         map[string]struct{}
	askUsers       map[string]struct{}
	requestTimeout time.Duration
}

func NewHandler(reg *registry.Store, ts transcript.Store, auditLog *audit.Log, router backend.Generator, cfg Config) *Handler {
	return &Handler{
		registry:       reg,
		transcript:     ts,
		auditLog:       auditLog,
		router:         router,
		adminID:        cfg.AdminUserID,
		channels:       toSet(cfg.TargetChannels),
		guilds:         toSet(cfg.AllowedGuilds),
		askUsers:       toSet(cfg.AskWhitelist),
		requestTimeout: cfg.RequestTimeout,
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (h *Handler) SetBotID(id string) {
	h.botID = id
}

func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.HandleMessage(&DiscordSession{s}, m)
}

// HandleMessage is the passive relay: gate the message, record it, run the
// compose->route->render pipeline, and reply with one or more embeds.
func (h *Handler) HandleMessage(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == h.botID || m.Author.Bot {
		return
	}
	if _, ok := h.channels[m.ChannelID]; !ok {
		return
	}
	if len(h.guilds) > 0 && m.GuildID != "" {
		if _, ok := h.guilds[m.GuildID]; !ok {
			return
		}
	}
	if strings.Contains(m.Content, "@silent") {
		return
	}
	if strings.HasPrefix(m.Content, "/") {
		return
	}

	// Thread side-conversations never reach the shared transcript.
	if channel, err := s.Channel(m.ChannelID); err == nil && channel.IsThread() {
		return
	}

	if h.registry.IsBanned(m.Author.ID) {
		if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Embeds:    []*discordgo.MessageEmbed{errorEmbed(permissionDeniedText)},
			Reference: m.Reference(),
		}); err != nil {
			log.Printf("Error sending ban notice: %v", err)
		}
		return
	}

	if err := h.auditLog.Append(audit.Record{
		UserID:   m.Author.ID,
		Username: m.Author.Username,
		Message:  m.Content,
	}); err != nil {
		log.Printf("Error persisting user input: %v", err)
	}

	if err := h.transcript.Append(displayName(m), m.Content); err != nil {
		log.Printf("Error appending to transcript: %v", err)
	}

	placeholder, err := s.ChannelMessageSendReply(m.ChannelID, h.registry.RandomPhrase("Processing..."), m.Reference())
	if err != nil {
		log.Printf("Error sending placeholder: %v", err)
		return
	}

	s.ChannelTyping(m.ChannelID)

	text, err := h.generate(m.Content)
	if err != nil {
		log.Printf("Error generating response: %v", err)
		h.editEmbed(s, m.ChannelID, placeholder.ID, errorEmbed(apologyText))
		return
	}

	chunks := Chunk(Sanitize(text), MaxChunkSize)
	h.editEmbed(s, m.ChannelID, placeholder.ID, responseEmbed(chunks[0]))
	for _, chunk := range chunks[1:] {
		if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{responseEmbed(chunk)},
		}); err != nil {
			log.Printf("Error sending response chunk: %v", err)
		}
	}
}

// generate runs the compose->route pipeline against the current transcript,
// profile, and model selection.
func (h *Handler) generate(userText string) (string, error) {
	rendered, err := h.transcript.Render()
	if err != nil {
		log.Printf("Error rendering transcript: %v", err)
		rendered = "**Conversation:**"
	}

	_, profile := h.registry.ActiveProfile()
	_, model := h.registry.ActiveModel()

	p := backend.Prompt{
		Messages: prompt.ChatMessages(rendered, profile.BehaviorPrompt, userText),
		Flat:     prompt.Completion(rendered, profile.BehaviorPrompt, userText),
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	return h.router.Generate(ctx, model, p)
}

func (h *Handler) editEmbed(s Session, channelID, messageID string, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Embeds:  &embeds,
	}); err != nil {
		log.Printf("Error editing reply: %v", err)
	}
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
