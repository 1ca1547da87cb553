package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateMessage]     = (*CreateCommand)(nil)
	_ gocmd.Commander[FollowMessage]     = (*FollowCommand)(nil)
	_ gocmd.Commander[AccountAddMessage] = (*AccountAddCommand)(nil)
	_ gocmd.Commander[RevokeMessage]     = (*RevokeCommand)(nil)
	_ gocmd.Commander[ReloadMessage]     = (*ReloadCommand)(nil)
)
