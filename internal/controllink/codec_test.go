package controllink

import (
	"bytes"
	"testing"
)

func decodeAll(t *testing.T, d *Decoder, frame []byte) (*Message, error) {
	t.Helper()
	var last *Message
	for _, b := range frame {
		msg, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			last = msg
		}
	}
	return last, nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := map[string]struct {
		kind    Kind
		payload []byte
	}{
		"empty terminator": {KindFilename, nil},
		"text":             {KindSSID, []byte("office-net")},
		"framing bytes":    {KindImage, []byte{StartByte, EndByte, EscByte, 0x00, 0xFF}},
		"json":             {KindStatus, []byte(`{"isPrimary":true,"image":{"filename":"a.iso"}}`)},
	}
	for name, tc := range cases {
		frame, err := EncodeFrame(tc.kind, tc.payload)
		if err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		if frame[0] != StartByte || frame[len(frame)-1] != EndByte {
			t.Fatalf("%s: missing framing bytes: % X", name, frame)
		}
		inner := frame[1 : len(frame)-1]
		if bytes.IndexByte(inner, StartByte) >= 0 || bytes.IndexByte(inner, EndByte) >= 0 {
			t.Fatalf("%s: unescaped framing byte inside frame: % X", name, frame)
		}
		msg, err := decodeAll(t, NewDecoder(), frame)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if msg == nil {
			t.Fatalf("%s: no message decoded", name)
		}
		if msg.Kind != tc.kind {
			t.Fatalf("%s: kind=%v want %v", name, msg.Kind, tc.kind)
		}
		if !bytes.Equal(msg.Payload, tc.payload) {
			t.Fatalf("%s: payload=%q want %q", name, msg.Payload, tc.payload)
		}
	}
}

func TestDecoderRejectsCorruptCRC(t *testing.T) {
	frame, err := EncodeFrame(KindSSID, []byte("abc"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// flip a payload bit (last data byte before CRC is safe to mutate in the unstuffed range)
	frame[4] ^= 0x01
	if _, err := decodeAll(t, NewDecoder(), frame); err == nil || !IsFrameError(err) {
		t.Fatalf("expected frame error, got %v", err)
	}
}

func TestDecoderResyncsAfterGarbage(t *testing.T) {
	good, _ := EncodeFrame(KindPassword, []byte("secret"))
	stream := append([]byte{0x01, 0x02, EscByte, 0x33}, good...)
	var errs int
	msgs := NewDecoder().Decode(stream, func(error) { errs++ })
	if len(msgs) != 1 || string(msgs[0].Payload) != "secret" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if errs != 0 {
		t.Fatalf("garbage before START must be skipped silently, got %d errors", errs)
	}
}

func TestDecoderUnexpectedEnd(t *testing.T) {
	if _, err := NewDecoder().DecodeByte(EndByte); err == nil {
		t.Fatalf("expected error on END outside a frame")
	}
}

func TestDecoderOverflow(t *testing.T) {
	d := NewDecoder()
	_, _ = d.DecodeByte(StartByte)
	var gotErr error
	for i := 0; i < maxFrameSize+1; i++ {
		if _, err := d.DecodeByte('a'); err != nil {
			gotErr = err
			break
		}
	}
	if gotErr == nil || !IsFrameError(gotErr) {
		t.Fatalf("expected overflow frame error, got %v", gotErr)
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	if _, err := EncodeFrame(KindImage, make([]byte, MaxPayloadSize+1)); err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}

func TestKindClassification(t *testing.T) {
	if !KindFilename.Chunked() || !KindImage.Chunked() {
		t.Fatalf("filename and image must be chunked kinds")
	}
	for _, k := range []Kind{KindSSID, KindPassword, KindAPIVersion, KindStatus, KindReset} {
		if k.Chunked() {
			t.Fatalf("%v must be a scalar kind", k)
		}
	}
	if Kind(0x3C).Known() {
		t.Fatalf("0x3C must be unknown")
	}
	if got := Kind(0x3C).String(); got != "kind(0x3C)" {
		t.Fatalf("String()=%q", got)
	}
}
