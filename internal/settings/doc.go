// Package settings implements the runtime settings store for the
// WLAN Control Daemon.
//
// The store is a process-wide, thread-safe holder of transient wireless
// configuration: three independently atomic runtime toggles (RSSI poll
// interval, IP-reachability-disconnect enable, Bluetooth connection state)
// and five feature flags resolved once from the device overlay at
// construction and immutable afterwards. Nothing is persisted or validated;
// the store is a pass-through cache with atomic visibility guarantees.
//
// One instance is constructed at daemon start and injected into every
// consumer. There is no global lookup and no reset path short of
// reconstructing the store.
package settings
