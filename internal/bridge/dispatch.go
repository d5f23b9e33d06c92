package bridge

import (
	"bytes"

	"zulubridge/internal/controllink"
)

// OnMessage routes one control-link message. It runs inside
// ProcessMessages on the serving goroutine and never blocks.
func (o *Orchestrator) OnMessage(kind controllink.Kind, payload []byte) {
	switch kind {
	case controllink.KindAPIVersion:
		o.onVersion(payload)
	case controllink.KindStatus:
		o.status.Update(payload)
	case controllink.KindFilenamesBegin:
		o.log.Debug().Msg("beginning filename cache update")
		o.filenames.Begin()
	case controllink.KindFilename:
		o.filenames.Accept(payload)
	case controllink.KindImage:
		o.images.Accept(payload)
	case controllink.KindSSID, controllink.KindPassword:
		if o.creds.Complete() {
			o.log.Debug().Str("kind", kind.String()).Msg("credentials already resolved, ignoring")
			return
		}
		if kind == controllink.KindSSID {
			o.creds.ssid.resolve(text(payload), o.log)
		} else {
			o.creds.password.resolve(text(payload), o.log)
		}
	case controllink.KindReset:
		o.onReset()
	default:
		o.log.Debug().Str("kind", kind.String()).Msg("unhandled message kind")
	}
}

func (o *Orchestrator) onVersion(payload []byte) {
	server := text(payload)
	ok := o.version.Update(server)
	ev := o.log.Info()
	if !ok {
		versionMismatchTotal.Inc()
		ev = o.log.Warn()
	}
	ev.Str("client", o.version.Client()).Str("server", server).Bool("compatible", ok).Msg("server API version received")
	o.pub.Publish(Event{Name: "version_received", State: o.State(), Fields: map[string]any{"server": server, "compatible": ok}})
}

func (o *Orchestrator) onReset() {
	if !o.resetPending.CompareAndSwap(false, true) {
		return
	}
	o.log.Warn().Dur("delay", o.cfg.ResetDelay).Msg("reset received, rebooting")
	o.pub.Publish(Event{Name: "reset_received", State: o.State()})
	if o.rebooter != nil {
		o.rebooter.Reboot(o.cfg.ResetDelay)
	}
}

// text returns payload up to the first NUL.
func text(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return string(payload)
}
