package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"treebot/pkg/audit"
	"treebot/pkg/backend"
	"treebot/pkg/bot"
	"treebot/pkg/config"
	"treebot/pkg/registry"
	"treebot/pkg/transcript"
)

const (
	modelsFile   = "models.json"
	profilesFile = "profiles.json"
	phrasesFile  = "phrases.json"
	auditFile    = "user_inputs.json"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		log.Fatal("Missing required environment variable: DISCORD_BOT_TOKEN")
	}
	adminUserID := os.Getenv("ADMIN_USER_ID")
	if adminUserID == "" {
		log.Fatal("Missing required environment variable: ADMIN_USER_ID")
	}
	targetChannels := splitCSV(os.Getenv("TARGET_CHANNEL_IDS"))
	if len(targetChannels) == 0 {
		log.Fatal("Missing required environment variable: TARGET_CHANNEL_IDS")
	}
	activeModel := os.Getenv("ACTIVE_MODEL")
	if activeModel == "" {
		log.Fatal("Missing required environment variable: ACTIVE_MODEL")
	}
	activeProfile := os.Getenv("ACTIVE_PROFILE")
	if activeProfile == "" {
		log.Fatal("Missing required environment variable: ACTIVE_PROFILE")
	}

	maxHistory := cfg.History.MaxMessages
	if raw := os.Getenv("MAX_MESSAGE_HISTORY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			log.Fatalf("Invalid MAX_MESSAGE_HISTORY: %q", raw)
		}
		maxHistory = n
	}

	// Load registries. Models and profiles must contain the active names.
	reg, err := registry.Load(modelsFile, profilesFile, os.Getenv("BANNED_USERS_FILE"), phrasesFile, activeModel, activeProfile)
	if err != nil {
		log.Fatalf("Failed to load registries: %v", err)
	}

	// Transcript store: Redis when configured, in-memory otherwise.
	var store transcript.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisStore, err := transcript.NewRedisStore(redisURL, "treebot:transcript", maxHistory)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Transcript store: Redis")
	} else {
		store = transcript.NewMemoryStore(maxHistory)
		log.Println("Transcript store: in-memory")
	}

	timeout := time.Duration(cfg.Backend.RequestTimeoutSeconds) * time.Second
	opts := backend.Options{
		Temperature: cfg.ModelSettings.Temperature,
		MaxTokens:   cfg.ModelSettings.MaxTokens,
	}
	router := backend.NewRouter(
		backend.NewHTTPClient(timeout, opts),
		backend.NewVendorClient(timeout, opts, ""),
	)

	handler := bot.NewHandler(reg, store, audit.NewLog(auditFile), router, bot.Config{
		AdminUserID:    adminUserID,
		TargetChannels: targetChannels,
		AllowedGuilds:  splitCSV(os.Getenv("WHITELISTED_SERVER_IDS")),
		AskWhitelist:   splitCSV(os.Getenv("ASK_WHITE_LISTED_USER_IDS")),
		RequestTimeout: timeout,
	})

	// Create Discord session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent | discordgo.IntentsGuildMembers

	dg.AddHandler(handler.MessageCreate)
	dg.AddHandler(handler.InteractionCreate)

	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	handler.SetBotID(dg.State.User.ID)

	// Register slash commands (empty string = global, or a guild ID for
	// faster updates during development).
	guildID := os.Getenv("DISCORD_GUILD_ID")
	registeredCommands, err := bot.RegisterSlashCommands(dg, guildID)
	if err != nil {
		log.Fatalf("Error registering slash commands: %v", err)
	}
	defer func() {
		if err := bot.UnregisterSlashCommands(dg, guildID, registeredCommands); err != nil {
			log.Printf("Error unregistering slash commands: %v", err)
		}
	}()

	err = dg.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name: "the trees",
				Type: discordgo.ActivityTypeWatching,
			},
		},
		Status: "dnd",
	})
	if err != nil {
		log.Printf("Error setting status: %v", err)
	}

	log.Printf("Logged in as %s. Press CTRL-C to exit.", dg.State.User.Username)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	dg.Close()
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
