package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treebot/pkg/backend"
)

func command(userID, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: opts,
			},
			User: &discordgo.User{ID: userID},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func TestModelCommand_AdminSwitch(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("admin", "model", stringOption("model_name", "local")))

	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, "Success", f.session.InteractionEmbeds[0].Title)

	name, _ := f.registry.ActiveModel()
	assert.Equal(t, "local", name)
}

func TestModelCommand_NonAdminDenied(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("someone", "model", stringOption("model_name", "local")))

	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, "Error", f.session.InteractionEmbeds[0].Title)
	assert.Equal(t, permissionDeniedText, f.session.InteractionEmbeds[0].Description)

	// Selection untouched.
	name, _ := f.registry.ActiveModel()
	assert.Equal(t, "gpt", name)
}

func TestModelCommand_NotFoundEchoesName(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("admin", "model", stringOption("model_name", "bogus")))

	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, "Error", f.session.InteractionEmbeds[0].Title)
	assert.Contains(t, f.session.InteractionEmbeds[0].Description, `"bogus"`)

	name, _ := f.registry.ActiveModel()
	assert.Equal(t, "gpt", name)
}

func TestProfileCommand(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("admin", "profile", stringOption("profile_name", "missing")))
	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Contains(t, f.session.InteractionEmbeds[0].Description, `"missing"`)

	name, _ := f.registry.ActiveProfile()
	assert.Equal(t, "default", name)
}

func TestModelsCommand(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("admin", "models"))

	require.Len(t, f.session.InteractionEmbeds, 1)
	embed := f.session.InteractionEmbeds[0]
	assert.Equal(t, "Available Models", embed.Title)
	assert.Contains(t, embed.Description, "* gpt")
	assert.Contains(t, embed.Description, "* local")
}

func TestModelsCommand_NonAdminDenied(t *testing.T) {
	f := newFixture(t)
	f.handler.HandleInteraction(f.session, command("someone", "models"))
	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, permissionDeniedText, f.session.InteractionEmbeds[0].Description)
}

func TestResetHistoryCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Append("alice", "hello"))

	f.handler.HandleInteraction(f.session, command("admin", "resethistory"))

	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, "Success", f.session.InteractionEmbeds[0].Title)

	rendered, err := f.store.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Conversation:**", rendered)
}

func TestAskCommand(t *testing.T) {
	f := newFixture(t)
	f.generator.text = "forty-two"

	f.handler.HandleInteraction(f.session, command("someone", "ask", stringOption("question", "meaning of life?")))

	assert.True(t, f.session.Deferred)
	require.Len(t, f.session.InteractionEdits, 1)
	assert.Equal(t, "Response", f.session.InteractionEdits[0].Title)
	assert.Equal(t, "forty-two", f.session.InteractionEdits[0].Description)

	// The question never enters the shared transcript.
	rendered, err := f.store.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Conversation:**", rendered)
}

func TestAskCommand_EmptyTranscriptPlaceholderInPayload(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("someone", "ask", stringOption("question", "hi")))

	require.Len(t, f.generator.last.Messages, 3)
	assert.Equal(t, "**Conversation:**", f.generator.last.Messages[0].Content)
}

func TestAskCommand_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.err = backend.ErrBadResponse

	f.handler.HandleInteraction(f.session, command("someone", "ask", stringOption("question", "hi")))

	// Exactly one apology embed; transcript untouched.
	require.Len(t, f.session.InteractionEdits, 1)
	assert.Equal(t, "Error", f.session.InteractionEdits[0].Title)
	assert.Equal(t, apologyText, f.session.InteractionEdits[0].Description)
	assert.Empty(t, f.session.Followups)

	rendered, err := f.store.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Conversation:**", rendered)
}

func TestAskCommand_Whitelist(t *testing.T) {
	f := newFixture(t)
	f.handler.askUsers = map[string]struct{}{"vip": {}}

	f.handler.HandleInteraction(f.session, command("someone", "ask", stringOption("question", "hi")))
	require.Len(t, f.session.InteractionEmbeds, 1)
	assert.Equal(t, permissionDeniedText, f.session.InteractionEmbeds[0].Description)
	assert.Zero(t, f.generator.calls)

	f.handler.HandleInteraction(f.session, command("vip", "ask", stringOption("question", "hi")))
	assert.Equal(t, 1, f.generator.calls)

	// The admin is always allowed through.
	f.handler.HandleInteraction(f.session, command("admin", "ask", stringOption("question", "hi")))
	assert.Equal(t, 2, f.generator.calls)
}

func TestHelpCommand(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleInteraction(f.session, command("someone", "help"))

	require.Len(t, f.session.InteractionEmbeds, 1)
	embed := f.session.InteractionEmbeds[0]
	assert.Equal(t, "Help", embed.Title)
	assert.Len(t, embed.Fields, 6)
}

func TestHandleInteraction_IgnoresNonCommands(t *testing.T) {
	f := newFixture(t)
	f.handler.HandleInteraction(f.session, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionMessageComponent},
	})
	assert.Empty(t, f.session.InteractionEmbeds)
}
