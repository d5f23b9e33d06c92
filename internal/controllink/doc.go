// Package controllink carries the device-management protocol spoken with the
// peer over a serial bus (or a WebSocket relay of it). It is structured into
// small files by concern:
//
//   - kind.go: message kinds, the Handler callback and Requester contracts.
//   - codec.go: frame encoder and byte-at-a-time decoder (CRC-16, byte
//     stuffing, CBOR body).
//   - connection.go: serial and WebSocket transports.
//   - client.go: the link client. A reader goroutine owns the transport and
//     hands decoded messages over a bounded channel; ProcessMessages delivers
//     them on the caller's goroutine, so callbacks run in the serving context.
//
// A zero-length payload terminates a chunked record (filenames, images) and
// means "no value supplied" for every other kind.
package controllink
