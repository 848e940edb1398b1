package chanavg

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// planarOf builds a planar buffer from pixels given as {r, g, b, a}.
func planarOf(px ...[4]uint8) *Planar {
	p := NewPlanar(len(px))
	for i, v := range px {
		p.R[i], p.G[i], p.B[i], p.A[i] = v[0], v[1], v[2], v[3]
	}
	return p
}

// pixelAt returns pixel i of b as {r, g, b, a}.
func pixelAt(b PixelBuffer, i int) [4]uint8 {
	return [4]uint8{b.At(Red, i), b.At(Green, i), b.At(Blue, i), b.At(Alpha, i)}
}

// testPattern returns n pixels with varied values, every 7th fully transparent.
func testPattern(n int) *Planar {
	p := NewPlanar(n)
	for i := range n {
		p.R[i] = uint8(i * 7)
		p.G[i] = uint8(i*13 + 5)
		p.B[i] = uint8(255 - i*3)
		if i%7 == 0 {
			p.A[i] = 0
		} else {
			p.A[i] = uint8(i*11 | 1)
		}
	}
	return p
}

// allConfigs enumerates every include/exclude flag combination.
func allConfigs(n int, mode ExcludedMode) []FilterConfig {
	var cfgs []FilterConfig
	for bits := range 64 {
		cfgs = append(cfgs, FilterConfig{
			Length:       n,
			IncludeRed:   bits&1 != 0,
			IncludeGreen: bits&2 != 0,
			IncludeBlue:  bits&4 != 0,
			ExcludeRed:   bits&8 != 0,
			ExcludeGreen: bits&16 != 0,
			ExcludeBlue:  bits&32 != 0,
			Excluded:     mode,
		})
	}
	return cfgs
}

func TestAverageChannelsAllIncluded(t *testing.T) {
	in := planarOf([4]uint8{30, 60, 90, 255})
	out := NewPlanar(1)

	if err := AverageChannels(in, out, DefaultFilterConfig(1)); err != nil {
		t.Fatalf("AverageChannels() = %v", err)
	}

	want := [4]uint8{60, 60, 60, 255}
	if got := pixelAt(out, 0); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestAverageChannelsSelectiveExclusion(t *testing.T) {
	in := planarOf([4]uint8{30, 60, 90, 255})
	out := planarOf([4]uint8{1, 2, 3, 4})

	cfg := DefaultFilterConfig(1)
	cfg.ExcludeBlue = true

	if err := AverageChannels(in, out, cfg); err != nil {
		t.Fatalf("AverageChannels() = %v", err)
	}

	// Average still covers all three included channels; blue keeps the
	// pre-populated output value.
	want := [4]uint8{60, 60, 3, 255}
	if got := pixelAt(out, 0); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestAverageChannelsTruncates(t *testing.T) {
	tests := []struct {
		name string
		in   [4]uint8
		cfg  FilterConfig
		want [4]uint8
	}{
		{
			name: "three channels round down",
			in:   [4]uint8{1, 1, 2, 10},
			cfg:  DefaultFilterConfig(1),
			want: [4]uint8{1, 1, 1, 10},
		},
		{
			name: "max values do not wrap",
			in:   [4]uint8{255, 255, 255, 255},
			cfg:  DefaultFilterConfig(1),
			want: [4]uint8{255, 255, 255, 255},
		},
		{
			name: "red and green only",
			in:   [4]uint8{255, 254, 0, 1},
			cfg:  FilterConfig{Length: 1, IncludeRed: true, IncludeGreen: true},
			want: [4]uint8{254, 254, 254, 1},
		},
		{
			name: "single channel spreads",
			in:   [4]uint8{10, 20, 200, 9},
			cfg:  FilterConfig{Length: 1, IncludeBlue: true},
			want: [4]uint8{200, 200, 200, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewPlanar(1)
			if err := AverageChannels(planarOf(tt.in), out, tt.cfg); err != nil {
				t.Fatalf("AverageChannels() = %v", err)
			}
			if got := pixelAt(out, 0); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverageChannelsAlphaPassthrough(t *testing.T) {
	in := testPattern(64)
	for _, mode := range []ExcludedMode{ExcludedUntouched, ExcludedZero, ExcludedCopy} {
		for _, cfg := range allConfigs(in.Len(), mode) {
			out := NewPlanar(in.Len())
			out.Fill(7, 7, 7, 7)
			if err := AverageChannels(in, out, cfg); err != nil {
				t.Fatalf("AverageChannels(%+v) = %v", cfg, err)
			}
			for i := range in.Len() {
				if in.A[i] != 0 {
					continue
				}
				if got, want := pixelAt(out, i), pixelAt(in, i); got != want {
					t.Fatalf("cfg %+v: transparent pixel %d = %v, want %v", cfg, i, got, want)
				}
			}
		}
	}
}

func TestAverageChannelsZeroDivisorPassthrough(t *testing.T) {
	in := testPattern(64)
	for _, cfg := range allConfigs(in.Len(), ExcludedUntouched) {
		if cfg.Divisor() != 0 {
			continue
		}
		out := NewPlanar(in.Len())
		if err := AverageChannels(in, out, cfg); err != nil {
			t.Fatalf("AverageChannels() = %v", err)
		}
		excluded := [3]bool{cfg.ExcludeRed, cfg.ExcludeGreen, cfg.ExcludeBlue}
		for i := range in.Len() {
			if in.A[i] == 0 {
				continue
			}
			for c := Red; c <= Blue; c++ {
				want := in.At(c, i)
				if excluded[c] {
					want = 0 // untouched zeroed output
				}
				if got := out.At(c, i); got != want {
					t.Fatalf("cfg %+v: pixel %d %s = %d, want %d", cfg, i, c, got, want)
				}
			}
			if out.A[i] != in.A[i] {
				t.Fatalf("pixel %d alpha = %d, want %d", i, out.A[i], in.A[i])
			}
		}
	}
}

func TestAverageChannelsExcludedModes(t *testing.T) {
	in := planarOf([4]uint8{30, 60, 90, 255}, [4]uint8{30, 60, 90, 0})
	cfg := DefaultFilterConfig(2)
	cfg.ExcludeRed = true

	tests := []struct {
		mode ExcludedMode
		want [2][4]uint8
	}{
		{ExcludedUntouched, [2][4]uint8{{9, 60, 60, 255}, {30, 60, 90, 0}}},
		{ExcludedZero, [2][4]uint8{{0, 60, 60, 255}, {30, 60, 90, 0}}},
		{ExcludedCopy, [2][4]uint8{{30, 60, 60, 255}, {30, 60, 90, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out := planarOf([4]uint8{9, 9, 9, 9}, [4]uint8{9, 9, 9, 9})
			cfg := cfg
			cfg.Excluded = tt.mode
			if err := AverageChannels(in, out, cfg); err != nil {
				t.Fatalf("AverageChannels() = %v", err)
			}
			got := [2][4]uint8{pixelAt(out, 0), pixelAt(out, 1)}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAverageChannelsLengthMismatch(t *testing.T) {
	tests := []struct {
		name    string
		in, out *Planar
		buffer  string
		channel Channel
	}{
		{
			name:    "short input alpha",
			in:      &Planar{R: make([]uint8, 4), G: make([]uint8, 4), B: make([]uint8, 4), A: make([]uint8, 3)},
			out:     NewPlanar(4),
			buffer:  "input",
			channel: Alpha,
		},
		{
			name:    "short output green",
			in:      NewPlanar(4),
			out:     &Planar{R: make([]uint8, 4), G: make([]uint8, 2), B: make([]uint8, 4), A: make([]uint8, 4)},
			buffer:  "output",
			channel: Green,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Fill(10, 20, 30, 255)
			before := *tt.out
			snapshot := [4][]uint8{
				append([]uint8(nil), before.R...),
				append([]uint8(nil), before.G...),
				append([]uint8(nil), before.B...),
				append([]uint8(nil), before.A...),
			}

			err := AverageChannels(tt.in, tt.out, DefaultFilterConfig(4))
			if !errors.Is(err, ErrLengthMismatch) {
				t.Fatalf("err = %v, want ErrLengthMismatch", err)
			}
			var lm *LengthMismatchError
			if !errors.As(err, &lm) {
				t.Fatalf("err = %T, want *LengthMismatchError", err)
			}
			if lm.Buffer != tt.buffer || lm.Channel != tt.channel || lm.Want != 4 {
				t.Errorf("error = %+v, want buffer %s channel %s", lm, tt.buffer, tt.channel)
			}

			after := [4][]uint8{tt.out.R, tt.out.G, tt.out.B, tt.out.A}
			if diff := cmp.Diff(snapshot, after); diff != "" {
				t.Errorf("output written despite error (-before +after):\n%s", diff)
			}
		})
	}
}

func TestAverageChannelsNilBuffer(t *testing.T) {
	var nilPlanar *Planar
	err := AverageChannels(nilPlanar, NewPlanar(1), DefaultFilterConfig(1))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	if err := AverageChannels(nilPlanar, nilPlanar, DefaultFilterConfig(0)); err != nil {
		t.Errorf("zero length with nil buffers = %v, want nil", err)
	}
}

func TestAverageChannelsInvalidConfig(t *testing.T) {
	err := AverageChannels(NewPlanar(1), NewPlanar(1), FilterConfig{Length: -1})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestAverageChannelsShorterLength(t *testing.T) {
	in := planarOf([4]uint8{30, 60, 90, 255}, [4]uint8{30, 60, 90, 255})
	out := NewPlanar(2)

	if err := AverageChannels(in, out, DefaultFilterConfig(1)); err != nil {
		t.Fatalf("AverageChannels() = %v", err)
	}
	if got := pixelAt(out, 1); got != [4]uint8{} {
		t.Errorf("pixel beyond Length written: %v", got)
	}
}

func TestAverageChannelsInPlace(t *testing.T) {
	buf := planarOf([4]uint8{30, 60, 90, 255}, [4]uint8{1, 2, 3, 0})
	if err := AverageChannels(buf, buf, DefaultFilterConfig(2)); err != nil {
		t.Fatalf("AverageChannels() = %v", err)
	}
	want := [2][4]uint8{{60, 60, 60, 255}, {1, 2, 3, 0}}
	got := [2][4]uint8{pixelAt(buf, 0), pixelAt(buf, 1)}
	if got != want {
		t.Errorf("in-place result = %v, want %v", got, want)
	}
}

func TestAverageChannelsIdempotent(t *testing.T) {
	in := testPattern(300)
	for _, cfg := range allConfigs(in.Len(), ExcludedZero) {
		a, b := NewPlanar(in.Len()), NewPlanar(in.Len())
		if err := AverageChannels(in, a, cfg); err != nil {
			t.Fatal(err)
		}
		if err := AverageChannels(in, b, cfg); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("cfg %+v: runs differ (-first +second):\n%s", cfg, diff)
		}
	}
}

func TestAverageRangeOrderIndependent(t *testing.T) {
	in := testPattern(257)
	n := in.Len()
	for _, cfg := range allConfigs(n, ExcludedCopy) {
		forward := NewPlanar(n)
		if err := AverageChannels(in, forward, cfg); err != nil {
			t.Fatal(err)
		}

		// Reverse, one pixel at a time.
		reverse := NewPlanar(n)
		for i := n - 1; i >= 0; i-- {
			AverageRange(in, reverse, cfg, i, i+1)
		}

		// Uneven partitions processed back to front.
		parts := NewPlanar(n)
		bounds := []int{0, 3, 64, 65, 200, n}
		for j := len(bounds) - 1; j > 0; j-- {
			AverageRange(in, parts, cfg, bounds[j-1], bounds[j])
		}

		if diff := cmp.Diff(forward, reverse); diff != "" {
			t.Fatalf("cfg %+v: reverse differs:\n%s", cfg, diff)
		}
		if diff := cmp.Diff(forward, parts); diff != "" {
			t.Fatalf("cfg %+v: partitioned differs:\n%s", cfg, diff)
		}
	}
}

func TestAverageChannelsInterleavedMatchesPlanar(t *testing.T) {
	in := testPattern(128)
	n := in.Len()

	for _, order := range []ChannelOrder{OrderRGBA, OrderBGRA} {
		for _, cfg := range allConfigs(n, ExcludedUntouched) {
			planarOut := NewPlanar(n)
			planarOut.Fill(5, 6, 7, 8)
			if err := AverageChannels(in, planarOut, cfg); err != nil {
				t.Fatal(err)
			}

			ilIn := NewInterleaved(n, order)
			if err := Knit(ilIn, in); err != nil {
				t.Fatal(err)
			}
			ilOut := NewInterleaved(n, order)
			for i := range n {
				ilOut.Set(Red, i, 5)
				ilOut.Set(Green, i, 6)
				ilOut.Set(Blue, i, 7)
				ilOut.Set(Alpha, i, 8)
			}
			if err := AverageChannels(ilIn, ilOut, cfg); err != nil {
				t.Fatal(err)
			}

			got := NewPlanar(n)
			if err := Unknit(got, ilOut); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(planarOut, got); diff != "" {
				t.Fatalf("order %d cfg %+v: interleaved differs:\n%s", order, cfg, diff)
			}
		}
	}
}

func TestAverageChannelsMixedLayouts(t *testing.T) {
	in := testPattern(32)
	n := in.Len()
	cfg := DefaultFilterConfig(n)

	want := NewPlanar(n)
	if err := AverageChannels(in, want, cfg); err != nil {
		t.Fatal(err)
	}

	out := NewInterleaved(n, OrderRGBA)
	if err := AverageChannels(in, out, cfg); err != nil {
		t.Fatal(err)
	}
	got := NewPlanar(n)
	if err := Unknit(got, out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planar->interleaved differs:\n%s", diff)
	}
}

func TestAverageChannelsNoAllocs(t *testing.T) {
	in := testPattern(1024)
	out := NewPlanar(in.Len())
	cfg := DefaultFilterConfig(in.Len())
	cfg.ExcludeGreen = true

	allocs := testing.AllocsPerRun(10, func() {
		_ = AverageChannels(in, out, cfg)
	})
	if allocs != 0 {
		t.Errorf("AverageChannels allocated %v times per run, want 0", allocs)
	}
}
