package memcache_fx

import (
	"go.uber.org/fx"
	mem "storefront/pkg/memcache"
)

var Module = fx.Provide(provideMemcacheClient)

func provideMemcacheClient() mem.Store {
	return mem.NewTTLStore()
}
