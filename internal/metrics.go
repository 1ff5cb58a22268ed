package internal

import "github.com/prometheus/client_golang/prometheus"

var (
	roleboardStateEventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleboard_state_events_total",
			Help: "State events applied to the guild state, by type",
		},
		[]string{"type"},
	)

	roleboardDiscardedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleboard_state_events_discarded_total",
			Help: "Count of state events with no registered handler",
		},
		[]string{"type"},
	)

	roleboardRosterResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleboard_roster_resolutions_total",
			Help: "Roster resolutions performed, by transport",
		},
		[]string{"transport"},
	)

	roleboardSessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleboard_roster_sessions_open",
			Help: "Currently open live roster sessions",
		},
	)

	roleboardStateGuildCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleboard_state_guilds_count",
			Help: "Guilds in state",
		},
	)

	roleboardStateRoleCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleboard_state_roles_count",
			Help: "Roles in state",
		},
	)

	roleboardStateMemberCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleboard_state_members_count",
			Help: "Guild members in state",
		},
	)

	roleboardStateUserCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleboard_state_users_count",
			Help: "Users in state",
		},
	)
)
