package discord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	"server-actions/internal/core"

	"github.com/bwmarrin/discordgo"
)

// registerCommands syncs the registry's slash definitions into one guild:
// obsolete remote commands are deleted, changed or new ones are re-created.
// Definition hashes are kept per guild so an unchanged command costs nothing.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	localHashes := b.guildCommandHashes(guildID)

	var wanted []*discordgo.ApplicationCommand
	wantedHashes := make(map[string]string)
	for _, cmd := range core.AllCommands() {
		if def := normalizeDefinition(cmd); def != nil {
			wanted = append(wanted, def)
			wantedHashes[def.Name] = hashCommand(def)
		}
	}

	// Delete obsolete
	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
			delete(localHashes, old.Name)
		}
	}

	// Create or update changed commands
	var changed []*discordgo.ApplicationCommand
	for _, cmd := range wanted {
		if localHashes[cmd.Name] != wantedHashes[cmd.Name] {
			changed = append(changed, cmd)
		}
	}

	if len(changed) > 0 {
		log.Printf("[INFO] [%s] %d commands changed, updating with rate limit...", guildID, len(changed))
		b.createCommandsWithRateLimit(appID, guildID, changed)
		for _, c := range changed {
			localHashes[c.Name] = wantedHashes[c.Name]
		}
	}

	b.saveGuildCommandHashes(guildID, localHashes)
	return nil
}

func (b *Bot) guildCommandHashes(guildID string) map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]string)
	for name, hash := range b.cmdHashes[guildID] {
		out[name] = hash
	}
	return out
}

func (b *Bot) saveGuildCommandHashes(guildID string, hashes map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cmdHashes[guildID] = hashes
}

// normalizeDefinition normalizes a command definition
func normalizeDefinition(cmd core.Command) *discordgo.ApplicationCommand {
	if slash, ok := cmd.(core.SlashProvider); ok {
		if def := slash.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			return def
		}
	}
	return nil
}

func hashCommand(def *discordgo.ApplicationCommand) string {
	data, err := json.Marshal(def)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// createCommandsWithRateLimit registers commands spaced out under the API's
// command-create limit.
func (b *Bot) createCommandsWithRateLimit(appID, guildID string, cmds []*discordgo.ApplicationCommand) {
	ticker := time.NewTicker(time.Second / 40)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range cmds {
		wg.Add(1)
		go func(cmd *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			_, err := b.dg.ApplicationCommandCreate(appID, guildID, cmd)
			if err != nil {
				log.Printf("[ERR] Can't create command %s: %v", cmd.Name, err)
			} else {
				log.Printf("[DONE] Command created: %s", cmd.Name)
			}
		}(job)
	}
	wg.Wait()
}
