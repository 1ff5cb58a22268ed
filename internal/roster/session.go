package roster

import "github.com/roleboard/roleboard/discord"

// Session is the selection state machine behind a roster view: either no
// role is selected (only possible when the guild has no roles at all) or
// a role at some index of the sorted role list is selected, with an
// active filter query. Sessions are single-threaded; callers serialize
// access on the goroutine driving the view.
type Session struct {
	snapshot    Snapshot
	openProfile ProfileOpener

	guildID discord.GuildID
	roles   []discord.Role
	index   int
	query   string
}

// View is a recomputed roster for the current selection and query. Views
// are throwaway values; a newer recompute supersedes any older View.
type View struct {
	Role    *discord.Role  `json:"role,omitempty"`
	Icon    RoleIcon       `json:"icon"`
	Query   string         `json:"query"`
	Members []MemberRecord `json:"members"`

	// Member count before filtering, so an empty result with a non-empty
	// query reads as "no members found" rather than "role has no members".
	TotalMembers int `json:"total_members"`
}

// NewSession creates a session for a guild. The first role of the sorted
// role list starts selected; a guild with no cached roles starts with
// nothing selected.
func NewSession(snapshot Snapshot, guildID discord.GuildID, openProfile ProfileOpener) *Session {
	s := &Session{
		snapshot:    snapshot,
		openProfile: openProfile,
		guildID:     guildID,
		index:       -1,
	}

	s.ReloadRoles()

	return s
}

// GuildID returns the guild this session browses.
func (s *Session) GuildID() discord.GuildID {
	return s.guildID
}

// Roles returns the sorted role list the session currently presents.
func (s *Session) Roles() []discord.Role {
	return s.roles
}

// Query returns the active filter query.
func (s *Session) Query() string {
	return s.query
}

// SelectedRole returns the currently selected role.
// Returns a boolean to signify a selection or not.
func (s *Session) SelectedRole() (role discord.Role, ok bool) {
	if s.index < 0 || s.index >= len(s.roles) {
		return
	}

	return s.roles[s.index], true
}

// ReloadRoles refreshes the role list from the snapshot. The selection
// follows the previously selected role ID where it still exists,
// otherwise it clamps to the nearest valid index.
func (s *Session) ReloadRoles() {
	selected, hadSelection := s.SelectedRole()

	s.roles = s.snapshot.GetSortedRoles(s.guildID)

	if len(s.roles) == 0 {
		s.index = -1
		s.query = ""

		return
	}

	if hadSelection {
		for i, role := range s.roles {
			if role.ID == selected.ID {
				s.index = i

				return
			}
		}

		if s.index >= len(s.roles) {
			s.index = len(s.roles) - 1
		}

		return
	}

	s.index = 0
}

// SelectRole moves the selection to the role at index and resets the
// active query. Out-of-range indexes are ignored.
// Returns a boolean to signify the selection changed or not.
func (s *Session) SelectRole(index int) bool {
	if index < 0 || index >= len(s.roles) {
		return false
	}

	s.index = index
	s.query = ""

	return true
}

// SelectRoleID moves the selection to the role with the given ID.
// Returns a boolean to signify the selection changed or not.
func (s *Session) SelectRoleID(roleID discord.RoleID) bool {
	for i, role := range s.roles {
		if role.ID == roleID {
			return s.SelectRole(i)
		}
	}

	return false
}

// SetQuery updates the filter query without changing the selection.
func (s *Session) SetQuery(query string) {
	if s.index < 0 {
		return
	}

	s.query = query
}

// OpenProfile invokes the profile opener for a member of this guild.
func (s *Session) OpenProfile(userID discord.UserID) {
	if s.openProfile != nil {
		s.openProfile(userID, s.guildID)
	}
}

// Compute resolves, joins and filters the roster for the current
// selection. A session with nothing selected computes an empty view.
func (s *Session) Compute() View {
	role, ok := s.SelectedRole()
	if !ok {
		return View{
			Icon:    RoleIcon{Kind: RoleIconNone},
			Members: []MemberRecord{},
		}
	}

	selector := SelectorFor(s.guildID, role.ID)

	userIDs := ResolveMembers(s.snapshot, s.guildID, selector)
	records := BuildRecords(s.snapshot, s.snapshot, s.guildID, userIDs)

	return View{
		Role:         &role,
		Icon:         ResolveRoleIcon(role),
		Query:        s.query,
		Members:      FilterMembers(records, s.query),
		TotalMembers: len(records),
	}
}
