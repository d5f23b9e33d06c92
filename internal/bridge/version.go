package bridge

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"

	"zulubridge/pkg/types"
)

const (
	unknownServerVersion = "Unknown"
	missingServerVersion = "server failed to send version"
	mismatchMessage      = "API major version mismatch. Please update both devices to the latest firmware."
)

// VersionRecord tracks the client and server API versions and the JSON
// document served at /version. Update runs on the dispatch goroutine and
// Document may be read from any goroutine.
type VersionRecord struct {
	client string
	doc    atomic.Pointer[[]byte]
	server atomic.Pointer[string]
	match  atomic.Bool
}

// NewVersionRecord returns a record whose document reports that no server
// version has been received yet.
func NewVersionRecord(client string) *VersionRecord {
	v := &VersionRecord{client: client}
	v.publish(types.VersionDocument{ClientAPIVersion: client, ServerAPIVersion: missingServerVersion})
	return v
}

// Client returns the configured client API version.
func (v *VersionRecord) Client() string { return v.client }

// Server returns the last server version received, if any.
func (v *VersionRecord) Server() (string, bool) {
	p := v.server.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// Compatible reports whether the last server version shares the client's major version.
func (v *VersionRecord) Compatible() bool { return v.match.Load() }

// Update records the server version and rebuilds the document. An empty
// server version is reported as Unknown and never matches.
func (v *VersionRecord) Update(server string) bool {
	ok := Compatible(v.client, server)
	doc := types.VersionDocument{ClientAPIVersion: v.client, ServerAPIVersion: server}
	if server == "" {
		doc.ServerAPIVersion = unknownServerVersion
	}
	if !ok {
		doc.Message = mismatchMessage
	}
	v.server.Store(&server)
	v.match.Store(ok)
	v.publish(doc)
	return ok
}

// Document returns the current /version document.
func (v *VersionRecord) Document() []byte { return *v.doc.Load() }

func (v *VersionRecord) publish(doc types.VersionDocument) {
	b, err := json.Marshal(doc)
	if err != nil {
		// strings only; Marshal cannot fail here
		b = []byte(`{}`)
	}
	v.doc.Store(&b)
}

// Compatible compares the major versions of client and server. The server
// version must have the form <major>.<rest>; the client major must be
// positive.
func Compatible(client, server string) bool {
	cm, ok := majorVersion(client)
	if !ok || cm == 0 {
		return false
	}
	i := strings.IndexByte(server, '.')
	if i < 0 {
		return false
	}
	sm, ok := majorVersion(server[:i])
	return ok && sm == cm
}

func majorVersion(v string) (uint64, bool) {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
