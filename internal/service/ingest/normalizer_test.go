package ingest

import (
	"encoding/json"
	"testing"

	"zapdesk/entity"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5511999990000@s.whatsapp.net", "5511999990000"},
		{"5511999990000:12@s.whatsapp.net", "5511999990000"},
		{"123456789-987654@g.us", "123456789-987654"},
		{"5511999990000", "5511999990000"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMessageTypePriority(t *testing.T) {
	text := "oi"
	raw := json.RawMessage(`{}`)

	cases := []struct {
		name string
		mc   *entity.MessageContent
		want string
	}{
		{"nil payload", nil, entity.TypeOther},
		{"empty payload", &entity.MessageContent{}, entity.TypeOther},
		{"plain text", &entity.MessageContent{Conversation: &text}, entity.TypeText},
		{"extended text", &entity.MessageContent{ExtendedTextMessage: &entity.ExtendedText{Text: text}}, entity.TypeText},
		{"image", &entity.MessageContent{ImageMessage: raw}, entity.TypeImage},
		{"ptt counts as audio", &entity.MessageContent{PttMessage: raw}, entity.TypeAudio},
		{"call wins over text", &entity.MessageContent{
			Conversation:   &text,
			CallLogMessage: &entity.CallLogMessage{CallOutcome: "MISSED"},
		}, entity.TypeCall},
		{"image wins over text", &entity.MessageContent{
			Conversation: &text,
			ImageMessage: raw,
		}, entity.TypeImage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MessageType(c.mc); got != c.want {
				t.Errorf("MessageType = %q, want %q", got, c.want)
			}
		})
	}
}

func TestLogOutcome(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CONNECTED", entity.CallConnected},
		{"connected", entity.CallConnected},
		{"MISSED", entity.CallMissed},
		{"REJECTED", entity.CallRejected},
		{"ACCEPTEDELSEWHERE", entity.CallAcceptedElsewhere},
		{"SILENCEDBYDND", entity.CallSilencedDnd},
		{"SILENCEDUNKNOWNCALLER", entity.CallSilencedUnknown},
		{"whatever-new-state", entity.CallMissed},
	}
	for _, c := range cases {
		if got := LogOutcome(c.in); got != c.want {
			t.Errorf("LogOutcome(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLiveOutcome(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"offer", entity.CallIncoming, true},
		{"ringing", entity.CallRinging, true},
		{"accept", entity.CallConnected, true},
		{"reject", entity.CallRejected, true},
		{"timeout", entity.CallMissed, true},
		{"failed", entity.CallFailed, true},
		{"hold", "", false},
	}
	for _, c := range cases {
		got, ok := LiveOutcome(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("LiveOutcome(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFlexSecondsDecoding(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		secs  int
		valid bool
	}{
		{"bare int", `42`, 42, true},
		{"zero", `0`, 0, true},
		{"negative dropped", `-5`, 0, false},
		{"low high pair", `{"low": 42, "high": 0}`, 42, true},
		{"signed low pair", `{"low": -1, "high": 0}`, 4294967295, true},
		{"signed low with high", `{"low": -2147483648, "high": 1}`, 6442450944, true},
		{"garbage dropped", `"soon"`, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var f entity.FlexSeconds
			if err := json.Unmarshal([]byte(c.in), &f); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if f.Valid != c.valid || (c.valid && f.Secs != c.secs) {
				t.Errorf("got (%d, %v), want (%d, %v)", f.Secs, f.Valid, c.secs, c.valid)
			}
		})
	}
}

func TestCallContent(t *testing.T) {
	dur := 125
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"voice missed", CallContent(entity.CallMissed, false, nil), "Chamada de voz perdida"},
		{"video connected with duration", CallContent(entity.CallConnected, true, &dur), "Chamada de vídeo atendida (2min 5s)"},
		{"voice incoming", CallContent(entity.CallIncoming, false, nil), "Chamada de voz recebida"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, c.got, c.want)
		}
	}
}
