package event

import (
	"encoding/json"
	"fmt"
)

// envelope is the serialized shape of an Event.
type envelope struct {
	SourceID SourceID        `json:"source_id"`
	Kind     Kind            `json:"kind"`
	Data     json.RawMessage `json:"data"`
}

type decoder func(json.RawMessage) (Type, error)

var decoders = map[Kind]decoder{}

func register[T Type]() {
	var zero T
	decoders[zero.Kind()] = func(raw json.RawMessage) (Type, error) {
		var v T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
}

func init() {
	register[Noop]()

	register[Keyboard]()
	register[Mouse]()
	register[HotKey]()
	register[ContextMenuClicked]()
	register[ExitRequested]()
	register[SecureInputEnabled]()
	register[SecureInputDisabled]()
	register[SearchRequested]()
	register[EnableRequest]()
	register[DisableRequest]()
	register[ToggleRequest]()

	register[ProcessingError]()
	register[MatchesDetected]()
	register[MatchSelected]()
	register[CauseCompensatedMatch]()
	register[RenderingRequested]()
	register[Rendered]()
	register[ImageRequested]()
	register[ImageResolved]()
	register[MatchInjected]()
	register[DiscardPrevious]()
	register[DiscardBetween]()
	register[Enabled]()
	register[Disabled]()

	register[TriggerCompensation]()
	register[CursorHintCompensation]()
	register[TextInject]()
	register[MarkdownInject]()
	register[HTMLInject]()
	register[ImageInject]()
	register[Undo]()
	register[ShowNotification]()
	register[IconStatusChange]()
	register[ShowConfigFolder]()
	register[Exit]()
}

// EncodeType returns the canonical JSON of a payload alone.
func EncodeType(t Type) ([]byte, error) {
	if t == nil {
		t = Noop{}
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", t.Kind(), err)
	}
	return CanonicalizeJSON(raw)
}

// Encode returns the canonical JSON of an event.
func Encode(e Event) ([]byte, error) {
	data, err := EncodeType(e.Type)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(envelope{SourceID: e.SourceID, Kind: e.Kind(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return CanonicalizeJSON(raw)
}

// Decode parses an event produced by Encode.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}
	t, err := DecodeType(env.Kind, env.Data)
	if err != nil {
		return Event{}, err
	}
	return New(env.SourceID, t), nil
}

// DecodeType parses a payload of the given kind.
func DecodeType(kind Kind, data []byte) (Type, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	t, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return t, nil
}
