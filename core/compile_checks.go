package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ TokenStore      = (*FileTokenStore)(nil)
	_ TokenIssuer     = RandomTokenIssuer{}
	_ MembershipSet   = (*MemoryMembershipSet)(nil)
	_ AccountKeyring  = (*MemoryAccountKeyring)(nil)
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}

	_ RawConfigLoader = StaticConfigLoader{}
	_ RawConfigLoader = FileConfigLoader{}
	_ RawConfigLoader = EnvConfigLoader{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
