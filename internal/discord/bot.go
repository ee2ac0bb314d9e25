// Package discord wires the gateway session to the action engine: session
// lifecycle, slash command sync and interaction dispatch.
package discord

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"server-actions/internal/actions"
	"server-actions/internal/command"
	"server-actions/internal/config"
	"server-actions/internal/core"
	"server-actions/internal/platform"
	"server-actions/internal/storage"
	"server-actions/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
)

// Bot is the running Discord bot.
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config

	client  platform.Client
	jobs    *jobmgr.Manager
	engine  *actions.Engine
	ledger  *actions.Ledger
	handler *actions.Handler

	mu         sync.RWMutex
	cmdHashes  map[string]map[string]string // guildID -> command name -> hash
	registered map[string]bool
}

// StartBot builds the bot and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, st *storage.Storage) error {
	b := &Bot{
		cfg:        cfg,
		storage:    st,
		cmdHashes:  make(map[string]map[string]string),
		registered: make(map[string]bool),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.configureIntents()

	b.client = platform.NewDiscord(dg)
	b.jobs = jobmgr.NewManager(func(msg string) {
		log.Println("[INFO] [job]", msg)
	})

	registry := actions.NewRegistry()
	actions.RegisterDefaults(registry, b.jobs, nil)
	b.engine = actions.NewEngine(registry, b.reportRun)
	b.ledger = actions.NewLedger()
	b.handler = actions.NewHandler(b.storage, b.engine, b.ledger, b.client)
	b.handler.Commands = &commandInvoker{bot: b}
	b.handler.Protected = b.cfg.ProtectedUsers

	// The rollback command needs the engine, so it registers here instead of
	// in a package init.
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&command.RollbackCommand{Engine: b.engine},
			core.WithGuildOnly(),
			core.WithAdminOnly(),
			core.WithCommandLogger(),
		),
	)

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.engine.History().RunCleaner(ctx, time.Hour)
	go b.ledger.RunCleaner(ctx, time.Hour)

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.ID, g.Name)
			if err := s.GuildLeave(g.ID); err != nil {
				log.Printf("[ERR] Failed to leave guild %s: %v", g.ID, err)
			}
			continue
		}

		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
			}
		} else {
			log.Println("[INFO] Registering slash commands skipped")
		}
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.Guild.ID, g.Guild.Name)
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", g.Guild.ID, err)
		}
		return
	}

	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.GuildBlacklist, guildID)
}

// reportRun is the engine's run reporter.
func (b *Bot) reportRun(actx *actions.Context, rec *actions.Record) {
	log.Printf("[INFO] Run %s for button %s in guild %s finished: %s", rec.ID, rec.ButtonID, rec.GuildID, rec.Status)
}

// commandInvoker adapts the command registry to the engine's replay contract.
type commandInvoker struct {
	bot *Bot
}

func (ci *commandInvoker) Invoke(name string, options map[string]any, actx *actions.Context) ([]string, error) {
	cmd, ok := core.GetCommand(name)
	if !ok {
		return nil, &platform.NotFoundError{Resource: "command", ID: name}
	}

	sctx := &core.SyntheticContext{
		Session:   ci.bot.dg,
		Storage:   ci.bot.storage,
		GuildID:   actx.GuildID,
		ChannelID: actx.ChannelID,
		Member:    actx.Actor,
		Options:   options,
	}
	if err := cmd.Run(sctx); err != nil {
		return nil, err
	}
	return sctx.Replies(), nil
}
