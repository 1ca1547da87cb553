package sqlstore

import "github.com/goliatone/go-promise/core"

var (
	_ core.MembershipSet          = (*MembershipStore)(nil)
	_ core.AccountKeyring         = (*AccountKeyStore)(nil)
	_ core.CollaboratorProvider   = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
