package controllink

import "fmt"

// Kind identifies a control-link message. Values below 0x40 travel from the
// peer to the bridge; values from 0x40 are requests the bridge sends.
type Kind uint8

// Peer -> bridge.
const (
	KindAPIVersion     Kind = 0x01
	KindStatus         Kind = 0x02
	KindFilenamesBegin Kind = 0x03
	KindFilename       Kind = 0x04
	KindImage          Kind = 0x05
	KindSSID           Kind = 0x06
	KindPassword       Kind = 0x07
	KindReset          Kind = 0x08
)

// Bridge -> peer.
const (
	KindAnnounceVersion Kind = 0x40
	KindFetchSSID       Kind = 0x41
	KindFetchPassword   Kind = 0x42
	KindSubscribeStatus Kind = 0x43
	KindFetchFilenames  Kind = 0x44
	KindFetchImages     Kind = 0x45
	KindFetchNextImage  Kind = 0x46
	KindLoadImage       Kind = 0x47
	KindEjectImage      Kind = 0x48
	KindIPAddress       Kind = 0x49
	KindLinkDown        Kind = 0x4A
)

var kindNames = map[Kind]string{
	KindAPIVersion:      "api_version",
	KindStatus:          "status",
	KindFilenamesBegin:  "filenames_begin",
	KindFilename:        "filename",
	KindImage:           "image",
	KindSSID:            "ssid",
	KindPassword:        "password",
	KindReset:           "reset",
	KindAnnounceVersion: "announce_version",
	KindFetchSSID:       "fetch_ssid",
	KindFetchPassword:   "fetch_password",
	KindSubscribeStatus: "subscribe_status",
	KindFetchFilenames:  "fetch_filenames",
	KindFetchImages:     "fetch_images",
	KindFetchNextImage:  "fetch_next_image",
	KindLoadImage:       "load_image",
	KindEjectImage:      "eject_image",
	KindIPAddress:       "ip_address",
	KindLinkDown:        "link_down",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(0x%02X)", uint8(k))
}

// Known reports whether k is part of the protocol.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// Chunked reports whether a zero-length payload of this kind terminates a
// logical record. For every other kind a zero-length payload means "no value".
func (k Kind) Chunked() bool {
	return k == KindFilename || k == KindImage
}

// Request is an outgoing control-link request.
type Request struct {
	Kind    Kind
	Payload []byte
}

// Requester enqueues outgoing requests without blocking. It returns false when
// the outgoing queue is full; callers log and retry on their next poll.
type Requester interface {
	EnqueueRequest(kind Kind, payload []byte) bool
}

// Handler receives decoded peer messages. Implementations must not block.
type Handler interface {
	OnMessage(kind Kind, payload []byte)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(kind Kind, payload []byte)

func (f HandlerFunc) OnMessage(kind Kind, payload []byte) { f(kind, payload) }
