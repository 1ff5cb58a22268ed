package internal

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/internal/roster"
	"github.com/roleboard/roleboard/pkg/jsonutil"
	gotils_strconv "github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
)

// RestResponse is the response when returning rest requests.
type RestResponse struct {
	Success  bool        `json:"success"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// RoleSummary is a role with its resolved display glyph.
type RoleSummary struct {
	Role       discord.Role    `json:"role"`
	Icon       roster.RoleIcon `json:"icon"`
	IsEveryone bool            `json:"is_everyone"`
}

// GuildRolesResponse lists a guild's roles in sorted order.
type GuildRolesResponse struct {
	GuildID discord.GuildID `json:"guild_id"`
	Guild   *discord.Guild  `json:"guild,omitempty"`
	Roles   []RoleSummary   `json:"roles"`
}

// RoleMembersResponse is a resolved, joined and filtered roster.
type RoleMembersResponse struct {
	GuildID discord.GuildID       `json:"guild_id"`
	Role    *discord.Role         `json:"role,omitempty"`
	Icon    roster.RoleIcon       `json:"icon"`
	Query   string                `json:"query"`
	Members []roster.MemberRecord `json:"members"`

	// Member count before filtering. An empty member list with a
	// non-empty query means no matches, not an empty role.
	TotalMembers int `json:"total_members"`
}

// StatusResponse reports daemon health.
type StatusResponse struct {
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Guilds    int    `json:"guilds"`
	Members   int    `json:"members"`
	Sessions  int32  `json:"sessions"`
	Consumers string `json:"consumers"`
}

// NewRestRouter returns the REST routing handler.
func (rb *Roleboard) NewRestRouter() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/api/status", rb.StatusEndpoint)
	r.GET("/api/guilds/{guildID}/roles", rb.GuildRolesEndpoint)
	r.GET("/api/guilds/{guildID}/roles/{roleID}/members", rb.RoleMembersEndpoint)

	return r.Handler
}

// HandleRequest handles any incoming HTTP requests.
func (rb *Roleboard) HandleRequest(ctx *fasthttp.RequestCtx) {
	defer func() {
		rb.Logger.Info().Msgf("%s %s %s %d",
			ctx.RemoteAddr(),
			ctx.Request.Header.Method(),
			ctx.Request.URI().Path(),
			ctx.Response.StatusCode())
	}()

	rb.RouterHandler(ctx)
}

func (rb *Roleboard) writeRestResponse(ctx *fasthttp.RequestCtx, statusCode int, response RestResponse) {
	ctx.SetStatusCode(statusCode)
	ctx.Response.Header.Set("content-type", "application/json;charset=UTF-8")

	if err := jsonutil.MarshalToWriter(ctx, response); err != nil {
		rb.Logger.Warn().Err(err).Msg("Failed to write rest response")

		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

func snowflakeParam(ctx *fasthttp.RequestCtx, name string) (discord.Snowflake, bool) {
	value, _ := ctx.UserValue(name).(string)

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return discord.Snowflake(id), true
}

// StatusEndpoint returns daemon health and state counts.
func (rb *Roleboard) StatusEndpoint(ctx *fasthttp.RequestCtx) {
	rb.writeRestResponse(ctx, fasthttp.StatusOK, RestResponse{
		Success: true,
		Response: StatusResponse{
			Version:   VERSION,
			Uptime:    time.Since(rb.StartTime).Round(time.Second).String(),
			Guilds:    rb.State.Guilds.Count(),
			Members:   rb.State.GuildMembers.TotalCount(),
			Sessions:  rb.SessionsOpen.Load(),
			Consumers: strings.Join(MQConsumers, ","),
		},
	})
}

// GuildRolesEndpoint lists a guild's roles in sorted order with resolved
// icons. An unknown guild yields an empty role list, not an error.
func (rb *Roleboard) GuildRolesEndpoint(ctx *fasthttp.RequestCtx) {
	guildIDRaw, ok := snowflakeParam(ctx, "guildID")
	if !ok {
		rb.writeRestResponse(ctx, fasthttp.StatusBadRequest, RestResponse{
			Success: false,
			Error:   ErrInvalidGuildID.Error(),
		})

		return
	}

	guildID := discord.GuildID(guildIDRaw)

	response := GuildRolesResponse{
		GuildID: guildID,
		Roles:   make([]RoleSummary, 0),
	}

	if guild, ok := rb.State.GetGuild(guildID); ok {
		response.Guild = &guild
	}

	for _, role := range rb.State.GetSortedRoles(guildID) {
		response.Roles = append(response.Roles, RoleSummary{
			Role:       role,
			Icon:       roster.ResolveRoleIcon(role),
			IsEveryone: roster.SelectorFor(guildID, role.ID).IsEveryone(),
		})
	}

	rb.writeRestResponse(ctx, fasthttp.StatusOK, RestResponse{
		Success:  true,
		Response: response,
	})
}

// RoleMembersEndpoint resolves which cached members hold a role,
// optionally narrowed by a ?query= filter over their display identity.
func (rb *Roleboard) RoleMembersEndpoint(ctx *fasthttp.RequestCtx) {
	guildIDRaw, ok := snowflakeParam(ctx, "guildID")
	if !ok {
		rb.writeRestResponse(ctx, fasthttp.StatusBadRequest, RestResponse{
			Success: false,
			Error:   ErrInvalidGuildID.Error(),
		})

		return
	}

	roleIDRaw, ok := snowflakeParam(ctx, "roleID")
	if !ok {
		rb.writeRestResponse(ctx, fasthttp.StatusBadRequest, RestResponse{
			Success: false,
			Error:   ErrInvalidRoleID.Error(),
		})

		return
	}

	guildID := discord.GuildID(guildIDRaw)
	roleID := discord.RoleID(roleIDRaw)
	query := gotils_strconv.B2S(ctx.QueryArgs().Peek("query"))

	roleboardRosterResolutions.WithLabelValues("http").Inc()

	response := rb.resolveRoster(guildID, roleID, query)

	rb.writeRestResponse(ctx, fasthttp.StatusOK, RestResponse{
		Success:  true,
		Response: response,
	})
}

// resolveRoster runs the full resolve/join/filter pipeline for one
// request. Records are presented sorted by display name; the underlying
// cache iteration order is not meaningful to clients.
func (rb *Roleboard) resolveRoster(guildID discord.GuildID, roleID discord.RoleID, query string) RoleMembersResponse {
	selector := roster.SelectorFor(guildID, roleID)

	userIDs := roster.ResolveMembers(rb.State, guildID, selector)
	records := roster.BuildRecords(rb.State, rb.State, guildID, userIDs)

	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].DisplayName()) < strings.ToLower(records[j].DisplayName())
	})

	response := RoleMembersResponse{
		GuildID:      guildID,
		Icon:         roster.RoleIcon{Kind: roster.RoleIconNone},
		Query:        query,
		Members:      roster.FilterMembers(records, query),
		TotalMembers: len(records),
	}

	if role, ok := rb.State.GetGuildRole(guildID, roleID); ok {
		response.Role = &role
		response.Icon = roster.ResolveRoleIcon(role)
	}

	return response
}
