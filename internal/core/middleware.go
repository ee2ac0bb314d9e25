package core

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// WithGuildOnly drops invocations arriving outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return RespondEphemeral(v.Session, v.Event, "This command only works inside a server.")
				}
				if v, ok := ctx.(*SyntheticContext); ok && v.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithAdminOnly rejects invocations from non-administrators for commands that
// declare RequireAdmin.
func WithAdminOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if !cmd.RequireAdmin() {
					return cmd.Run(ctx)
				}
				switch v := ctx.(type) {
				case *SlashContext:
					if v.Event.Member == nil || !IsAdministrator(v.Session, v.Event.GuildID, v.Event.Member) {
						return RespondEphemeral(v.Session, v.Event, "You need administrator rights for this command.")
					}
				case *SyntheticContext:
					if v.Member == nil || !IsAdministrator(v.Session, v.GuildID, v.Member) {
						v.Reply("You need administrator rights for this command.")
						return nil
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger wraps a command to log its execution into the guild's
// command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				switch v := ctx.(type) {
				case *SlashContext:
					if v.Event.Member == nil || v.Storage == nil {
						break
					}
					user := v.Event.Member.User
					if e := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name()); e != nil {
						log.Printf("[WARN] Failed to log command /%s: %v", cmd.Name(), e)
					}

				case *SyntheticContext:
					if v.Member == nil || v.Member.User == nil || v.Storage == nil {
						break
					}
					user := v.Member.User
					if e := LogCommand(v.Session, v.Storage, v.GuildID, v.ChannelID, user.ID, user.Username, cmd.Name()); e != nil {
						log.Printf("[WARN] Failed to log replayed command /%s: %v", cmd.Name(), e)
					}
				}

				return err
			},
		}
	}
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
