package internal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/internal/roster"
	"github.com/roleboard/roleboard/pkg/jsonutil"
	"golang.org/x/time/rate"
)

const (
	gatewayWriteTimeout = 10 * time.Second

	// Commands per second a single session may issue. Keystroke-driven
	// query updates stay well under this; runaway clients get shed.
	commandRateLimit = 25
	commandRateBurst = 50
)

// Client command ops.
const (
	RosterOpSelectRole  = "select_role"
	RosterOpSetQuery    = "set_query"
	RosterOpOpenProfile = "open_profile"
)

// Server frame ops.
const (
	RosterOpView        = "view"
	RosterOpProfileOpen = "profile_open"
	RosterOpError       = "error"
)

type rosterCommand struct {
	Op     string         `json:"op"`
	Index  *int           `json:"index,omitempty"`
	RoleID discord.RoleID `json:"role_id,omitempty"`
	Query  string         `json:"query"`
	UserID discord.UserID `json:"user_id,omitempty"`
}

type rosterFrame struct {
	Op   string      `json:"op"`
	Data interface{} `json:"data,omitempty"`
}

type profileOpenFrame struct {
	UserID  discord.UserID  `json:"user_id"`
	GuildID discord.GuildID `json:"guild_id"`
}

// setupRosterGateway serves live roster sessions over websocket on a
// dedicated listener, separate from the REST surface.
func (rb *Roleboard) setupRosterGateway() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/roster", rb.rosterSessionHandler)

	rb.Logger.Info().Msgf("Serving roster gateway at %s", rb.Options.GatewayHost)

	err := http.ListenAndServe(rb.Options.GatewayHost, mux)
	if err != nil {
		rb.Logger.Error().Str("host", rb.Options.GatewayHost).Err(err).Msg("Failed to serve roster gateway")

		return fmt.Errorf("failed to serve roster gateway: %w", err)
	}

	return nil
}

func (rb *Roleboard) rosterSessionHandler(w http.ResponseWriter, r *http.Request) {
	guildIDRaw, err := strconv.ParseInt(r.URL.Query().Get("guild_id"), 10, 64)
	if err != nil || guildIDRaw == 0 {
		http.Error(w, ErrInvalidGuildID.Error(), http.StatusBadRequest)

		return
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		rb.Logger.Warn().Err(err).Msg("Failed to accept roster session")

		return
	}

	defer c.CloseNow()

	rb.SessionsOpen.Inc()
	defer rb.SessionsOpen.Dec()

	rb.runRosterSession(r.Context(), c, discord.GuildID(guildIDRaw))
}

// runRosterSession drives one live roster view: the selection state
// machine recomputes whenever the client changes role or query, or when
// the guild's cached state moves underneath it. Only the most recent
// computation is ever sent; an in-flight view is simply superseded by
// the next one.
func (rb *Roleboard) runRosterSession(ctx context.Context, c *websocket.Conn, guildID discord.GuildID) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var pending []rosterFrame

	session := roster.NewSession(rb.State, guildID, func(userID discord.UserID, openGuildID discord.GuildID) {
		pending = append(pending, rosterFrame{
			Op: RosterOpProfileOpen,
			Data: profileOpenFrame{
				UserID:  userID,
				GuildID: openGuildID,
			},
		})
	})

	changes := rb.Changes.Subscribe()
	defer rb.Changes.Unsubscribe(changes)

	commands := make(chan rosterCommand)
	readErr := make(chan error, 1)

	go rb.rosterReadLoop(ctx, c, commands, readErr)

	if err := rb.writeRosterView(ctx, c, session); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-rb.ctx.Done():
			_ = c.Close(websocket.StatusGoingAway, "closing")

			return

		case err := <-readErr:
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				rb.Logger.Debug().Err(err).Msg("Roster session read failed")
			}

			return

		case change, ok := <-changes:
			if !ok {
				return
			}

			if !change.Affects(guildID) {
				continue
			}

			if change.Kind == ChangeRoles || change.Kind == ChangeGuild {
				session.ReloadRoles()
			}

			if err := rb.writeRosterView(ctx, c, session); err != nil {
				return
			}

		case cmd := <-commands:
			recompute := rb.applyRosterCommand(session, cmd, &pending)

			for _, frame := range pending {
				if err := rb.writeRosterFrame(ctx, c, frame); err != nil {
					return
				}
			}

			pending = pending[:0]

			if recompute {
				if err := rb.writeRosterView(ctx, c, session); err != nil {
					return
				}
			}
		}
	}
}

func (rb *Roleboard) rosterReadLoop(ctx context.Context, c *websocket.Conn, commands chan<- rosterCommand, readErr chan<- error) {
	limiter := rate.NewLimiter(rate.Limit(commandRateLimit), commandRateBurst)

	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			readErr <- err

			return
		}

		if !limiter.Allow() {
			continue
		}

		var cmd rosterCommand

		if err := jsonutil.Unmarshal(data, &cmd); err != nil {
			continue
		}

		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// applyRosterCommand applies one client command to the session state
// machine. Returns whether the view must be recomputed.
func (rb *Roleboard) applyRosterCommand(session *roster.Session, cmd rosterCommand, pending *[]rosterFrame) bool {
	switch cmd.Op {
	case RosterOpSelectRole:
		if cmd.Index != nil {
			session.SelectRole(*cmd.Index)
		} else {
			session.SelectRoleID(cmd.RoleID)
		}

		return true

	case RosterOpSetQuery:
		session.SetQuery(cmd.Query)

		return true

	case RosterOpOpenProfile:
		session.OpenProfile(cmd.UserID)

		return false

	default:
		*pending = append(*pending, rosterFrame{
			Op:   RosterOpError,
			Data: "unknown op " + cmd.Op,
		})

		return false
	}
}

func (rb *Roleboard) writeRosterView(ctx context.Context, c *websocket.Conn, session *roster.Session) error {
	roleboardRosterResolutions.WithLabelValues("websocket").Inc()

	return rb.writeRosterFrame(ctx, c, rosterFrame{
		Op:   RosterOpView,
		Data: session.Compute(),
	})
}

func (rb *Roleboard) writeRosterFrame(ctx context.Context, c *websocket.Conn, frame rosterFrame) error {
	data, err := jsonutil.Marshal(frame)
	if err != nil {
		return fmt.Errorf("roster frame marshal: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, gatewayWriteTimeout)
	defer cancel()

	return c.Write(writeCtx, websocket.MessageText, data)
}
