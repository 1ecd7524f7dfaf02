package jsre

import (
	"sync"

	"github.com/dop251/goja"
)

// proxyFamily identifies which trap set (§4.D) a given host->JS proxy was
// built with. The value classifier uses it, via the registry below, to
// recognize a JS value as "one of ours" and route it back through the
// unwrap path instead of treating it as a plain object (§4.A rule 11).
type proxyFamily int

const (
	familyMapping proxyFamily = iota + 1
	familyList
	familyIterable
	familyImmutableBytes
	familyObject
)

// proxyFamilyKey names a marker property that nothing writes or probes.
// Classification asks isHostProxyObject, which consults the registry below,
// since a Proxy's own [[Get]] would otherwise run through its trap and
// never see a plain data property.
const proxyFamilyKey = "__jsre_proxy_family__"

var registryMu sync.RWMutex
var registry = map[*goja.Object]proxyRegistration{}

type proxyRegistration struct {
	family proxyFamily
	host   any
}

// registerHostProxy records that obj (the Proxy's external-facing object)
// wraps host, tagged with family, so later classification and unwrapping
// can recover the original Go value in O(1).
func registerHostProxy(obj *goja.Object, family proxyFamily, host any) {
	registryMu.Lock()
	registry[obj] = proxyRegistration{family: family, host: host}
	registryMu.Unlock()
}

func unregisterHostProxy(obj *goja.Object) {
	registryMu.Lock()
	delete(registry, obj)
	registryMu.Unlock()
}

func lookupHostProxy(obj *goja.Object) (proxyRegistration, bool) {
	registryMu.RLock()
	reg, ok := registry[obj]
	registryMu.RUnlock()
	return reg, ok
}

// isHostProxyObject reports whether obj is one of this bridge's own
// host->JS proxies.
func isHostProxyObject(obj *goja.Object) bool {
	if obj == nil {
		return false
	}
	_, ok := lookupHostProxy(obj)
	return ok
}

// unwrapHostProxy returns the original host value behind a proxy produced
// by this registry, per the JS->host classification contract's "unwrap our
// own proxy" rule.
func unwrapHostProxy(obj *goja.Object) (any, bool) {
	reg, ok := lookupHostProxy(obj)
	if !ok {
		return nil, false
	}
	return reg.host, true
}

// newHostProxy builds a goja Proxy over target using cfg, registers it under
// family so the classifier can recognize it later, and returns the proxy's
// external-facing object.
func newHostProxy(rt *goja.Runtime, target *goja.Object, cfg *goja.ProxyTrapConfig, family proxyFamily, host any) *goja.Object {
	p := rt.NewProxy(target, cfg)
	obj := p.ToValue(rt).ToObject(rt)
	registerHostProxy(obj, family, host)
	return obj
}
