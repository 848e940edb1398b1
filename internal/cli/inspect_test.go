package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/chanavg"
)

func TestComputeStats(t *testing.T) {
	p := chanavg.NewPlanar(4)
	p.Fill(100, 100, 100, 255)
	p.Set(chanavg.Red, 1, 0)
	p.Set(chanavg.Red, 2, 250)
	p.Set(chanavg.Alpha, 3, 0)

	s := computeStats(p)

	assert.Equal(t, 4, s.Pixels)
	assert.Equal(t, 1, s.Transparent)
	assert.Equal(t, 2, s.Grey)
	require.Len(t, s.Channels, 4)
	assert.Equal(t, ChannelStats{Channel: "red", Min: 0, Max: 250, Mean: 112.5}, s.Channels[0])
	assert.Equal(t, ChannelStats{Channel: "green", Min: 100, Max: 100, Mean: 100}, s.Channels[1])
	assert.Equal(t, "alpha", s.Channels[3].Channel)
}

func TestComputeStats_Empty(t *testing.T) {
	s := computeStats(chanavg.NewPlanar(0))

	assert.Zero(t, s.Pixels)
	require.Len(t, s.Channels, 4)
	assert.Equal(t, ChannelStats{Channel: "blue"}, s.Channels[2])
}

func TestInspectCommand(t *testing.T) {
	dir := isolate(t)
	input := writeTestImage(t, dir)

	stdout, _, err := executeCommand("inspect", input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "png 3x1 (3 pixels)")
	assert.Contains(t, stdout, "CHANNEL")
	assert.Contains(t, stdout, "transparent: 1 (33.3%)")
	assert.Contains(t, stdout, "grey: 0 (0.0%)")
}

func TestInspectCommand_JSON(t *testing.T) {
	dir := isolate(t)
	input := writeTestImage(t, dir)

	stdout, _, err := executeCommand("inspect", input, "--json")
	require.NoError(t, err)

	var s ImageStats
	require.NoError(t, json.Unmarshal([]byte(stdout), &s))

	assert.Equal(t, "png", s.Format)
	assert.Equal(t, 3, s.Width)
	assert.Equal(t, 1, s.Transparent)
	assert.Equal(t, uint8(200), s.Channels[0].Max)
}

func TestPrintStats_GroupsThousands(t *testing.T) {
	var buf strings.Builder

	require.NoError(t, printStats(&buf, ImageStats{Path: "big.png", Format: "png", Width: 2000, Height: 1000, Pixels: 2_000_000}))
	assert.Contains(t, buf.String(), "(2,000,000 pixels)")
}
