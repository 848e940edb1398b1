package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/chanavg"
	"gopkg.in/yaml.v3"
)

// Line names understood by Packet.LineIn.
const (
	// LineSource is the unmodified input image.
	LineSource = "source"

	// LineSourceAlpha is a line holding only the alpha channel of the input
	// image, with zero color channels.
	LineSourceAlpha = "source-alpha"
)

// ActionAverageChannels is the only action a Packet may name.
const ActionAverageChannels = "average-channels"

var (
	// ErrInvalidPacket is returned when a packet fails validation.
	ErrInvalidPacket = errors.New("host: invalid packet")

	// ErrNoPackets is returned when a packet document is empty.
	ErrNoPackets = errors.New("host: no packets")
)

// Packet is one step of an action chain. It is flat and serializable so it
// can cross a host boundary as YAML or JSON:
//
//	- action: average-channels
//	  includeBlue: false
//	  excludeRed: true
//	  excluded: zero
//	  opacity: 0.5
//	  lineOut: grey
//
// The Length of the embedded config is ignored; Process uses the image
// length.
type Packet struct {
	Action string `json:"action,omitempty" yaml:"action,omitempty"`

	chanavg.FilterConfig `yaml:",inline"`

	// Opacity blends the filter output with the work line. 1 replaces it,
	// 0 leaves it unchanged.
	Opacity float64 `json:"opacity" yaml:"opacity"`

	// LineIn names the line to read: "" for the work line, LineSource,
	// LineSourceAlpha, or a line stored by an earlier LineOut. Unknown names
	// read the work line.
	LineIn string `json:"lineIn,omitempty" yaml:"lineIn,omitempty"`

	// LineOut stores the result under a name instead of merging it into
	// the work line.
	LineOut string `json:"lineOut,omitempty" yaml:"lineOut,omitempty"`
}

// DefaultPacket returns the packet every decoded packet starts from: all
// channels included, nothing excluded, full opacity.
func DefaultPacket() Packet {
	return Packet{
		Action:       ActionAverageChannels,
		FilterConfig: chanavg.DefaultFilterConfig(0),
		Opacity:      1,
	}
}

// Config returns the filter config of the packet for n pixels.
func (p Packet) Config(n int) chanavg.FilterConfig {
	cfg := p.FilterConfig
	cfg.Length = n
	return cfg
}

// Validate checks the packet for values Process cannot run.
func (p Packet) Validate() error {
	if p.Action != "" && p.Action != ActionAverageChannels {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidPacket, p.Action)
	}
	if math.IsNaN(p.Opacity) || p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0, 1]", ErrInvalidPacket, p.Opacity)
	}
	if p.LineOut == LineSource || p.LineOut == LineSourceAlpha {
		return fmt.Errorf("%w: line %q is read-only", ErrInvalidPacket, p.LineOut)
	}
	if err := p.Config(0).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPacket, err)
	}
	return nil
}

// DecodePacket reads a single packet from YAML or JSON.
func DecodePacket(r io.Reader) (Packet, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return Packet{}, ErrNoPackets
		}
		return Packet{}, fmt.Errorf("host: decode packet: %w", err)
	}
	return decodeNode(documentRoot(&node))
}

// DecodePackets reads a packet list from YAML or JSON. A document holding a
// single mapping is accepted as a one-element list.
func DecodePackets(r io.Reader) ([]Packet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("host: read packets: %w", err)
	}

	var node yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoPackets
		}
		return nil, fmt.Errorf("host: decode packets: %w", err)
	}

	root := documentRoot(&node)
	items := []*yaml.Node{root}
	if root.Kind == yaml.SequenceNode {
		items = root.Content
	}
	if len(items) == 0 {
		return nil, ErrNoPackets
	}

	packets := make([]Packet, 0, len(items))
	for i, item := range items {
		p, err := decodeNode(item)
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
		packets = append(packets, p)
	}
	return packets, nil
}

func documentRoot(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

func decodeNode(n *yaml.Node) (Packet, error) {
	if n.Kind != yaml.MappingNode {
		return Packet{}, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidPacket, n.Line)
	}
	p := DefaultPacket()
	if err := n.Decode(&p); err != nil {
		return Packet{}, fmt.Errorf("host: decode packet: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Packet{}, err
	}
	return p, nil
}
