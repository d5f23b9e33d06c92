// Package bridge drives the bridge lifecycle and routes control-link messages
// into the caches. It is structured into small files by concern:
//
//   - orchestrator.go: Orchestrator, Step/Run and the state actions.
//   - dispatch.go: OnMessage routing for every message kind.
//   - config.go: Config, collaborator interfaces and defaults.
//   - version.go: VersionRecord and the /version document.
//   - credentials.go: SSID/password resolution with configured fallbacks.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - errors.go: IsFatal.
//
// A fatal error (radio init failure) ends Run; the daemon exits non-zero and
// relies on its supervisor to restart it. A peer reset reboots the process
// through the configured Rebooter.
package bridge
