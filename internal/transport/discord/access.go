package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	diagnosticsDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type permission struct {
	bit  int64
	name string
}

// permissionNames lists the permissions the relay cares about, in report order.
var permissionNames = []permission{
	{discordgo.PermissionViewChannel, "ViewChannel"},
	{discordgo.PermissionReadMessageHistory, "ReadMessageHistory"},
	{discordgo.PermissionSendMessages, "SendMessages"},
	{discordgo.PermissionAttachFiles, "AttachFiles"},
	{discordgo.PermissionEmbedLinks, "EmbedLinks"},
	{discordgo.PermissionManageWebhooks, "ManageWebhooks"},
}

// ChannelAccess looks up a channel and the bot's permissions in it.
func (s *Source) ChannelAccess(ctx context.Context, channelID string) (diagnosticsDomain.ChannelAccess, error) {
	channel, err := s.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return diagnosticsDomain.ChannelAccess{}, oops.In("discord").With("channel_id", channelID, "context", "channel lookup failed").Wrap(err)
	}

	if s.session.State == nil || s.session.State.User == nil {
		return diagnosticsDomain.ChannelAccess{}, oops.In("discord").With("channel_id", channelID).Errorf("session is not ready")
	}
	perms, err := s.session.UserChannelPermissions(s.session.State.User.ID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return diagnosticsDomain.ChannelAccess{}, oops.In("discord").With("channel_id", channelID, "context", "permission lookup failed").Wrap(err)
	}

	report := PermissionReport(perms)
	return diagnosticsDomain.ChannelAccess{
		Name:        channel.Name,
		GuildID:     channel.GuildID,
		Permissions: report,
		Missing:     MissingPermissions(report),
	}, nil
}

// PermissionReport maps the relevant permission names to whether perms grants
// them.
func PermissionReport(perms int64) map[string]bool {
	report := make(map[string]bool, len(permissionNames))
	for _, p := range permissionNames {
		report[p.name] = perms&p.bit != 0 || perms&discordgo.PermissionAdministrator != 0
	}
	return report
}

// MissingPermissions returns the names of denied permissions in report order.
func MissingPermissions(report map[string]bool) []string {
	return lo.FilterMap(permissionNames, func(p permission, _ int) (string, bool) {
		return p.name, !report[p.name]
	})
}
