package host

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/chanavg"
	"github.com/google/go-cmp/cmp"
)

func TestDecodePacketDefaults(t *testing.T) {
	p, err := DecodePacket(strings.NewReader("lineOut: grey\n"))
	if err != nil {
		t.Fatalf("DecodePacket() = %v", err)
	}
	want := DefaultPacket()
	want.LineOut = "grey"
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDecodePacketFields(t *testing.T) {
	const doc = `
action: average-channels
includeRed: false
excludeBlue: true
excluded: zero
opacity: 0.4
lineIn: source
`
	p, err := DecodePacket(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodePacket() = %v", err)
	}
	if p.IncludeRed || !p.IncludeGreen || !p.IncludeBlue {
		t.Errorf("include flags = %v %v %v", p.IncludeRed, p.IncludeGreen, p.IncludeBlue)
	}
	if !p.ExcludeBlue || p.Excluded != chanavg.ExcludedZero {
		t.Errorf("exclude = %v mode %v", p.ExcludeBlue, p.Excluded)
	}
	if p.Opacity != 0.4 || p.LineIn != LineSource {
		t.Errorf("opacity %v lineIn %q", p.Opacity, p.LineIn)
	}
}

func TestDecodePacketsJSON(t *testing.T) {
	const doc = `[{"includeBlue": false}, {"lineIn": "source", "opacity": 0}]`
	ps, err := DecodePackets(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodePackets() = %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("got %d packets, want 2", len(ps))
	}
	if ps[0].IncludeBlue || ps[0].Opacity != 1 {
		t.Errorf("packet 0 = %+v", ps[0])
	}
	if ps[1].LineIn != LineSource || ps[1].Opacity != 0 {
		t.Errorf("packet 1 = %+v", ps[1])
	}
}

func TestDecodePacketsSingleMapping(t *testing.T) {
	ps, err := DecodePackets(strings.NewReader("excludeRed: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || !ps[0].ExcludeRed {
		t.Errorf("packets = %+v", ps)
	}
}

func TestDecodePacketsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", ErrNoPackets},
		{"empty list", "[]", ErrNoPackets},
		{"scalar", "42", ErrInvalidPacket},
		{"bad opacity", "- opacity: 1.5", ErrInvalidPacket},
		{"bad action", "- action: blur", ErrInvalidPacket},
		{"bad mode", "- excluded: clear", chanavg.ErrInvalidConfig},
		{"read-only line", "- lineOut: source", ErrInvalidPacket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePackets(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPacketValidate(t *testing.T) {
	p := DefaultPacket()
	p.Action = ""
	if err := p.Validate(); err != nil {
		t.Errorf("empty action: %v", err)
	}
	p.Opacity = math.NaN()
	if err := p.Validate(); !errors.Is(err, ErrInvalidPacket) {
		t.Errorf("NaN opacity: err = %v", err)
	}
}

func TestPacketConfig(t *testing.T) {
	p := DefaultPacket()
	p.Length = 99
	if got := p.Config(7).Length; got != 7 {
		t.Errorf("Config(7).Length = %d", got)
	}
}
