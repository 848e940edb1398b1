package chanavg

// AverageChannels replaces the color channels of each pixel with the average
// of its included channels and writes the result into output.
//
// For every pixel index i in [0, cfg.Length):
//   - a fully transparent pixel (alpha 0) is copied to output unchanged;
//   - with no channel included, each non-excluded channel is copied through;
//   - otherwise the included channels are summed in 16-bit arithmetic, divided
//     (truncating) by their count, and the result is written to every
//     non-excluded channel.
//
// Alpha is always copied. Excluded channels follow cfg.Excluded.
//
// All buffer lengths are checked before the first write: a short channel
// yields an error wrapping ErrLengthMismatch and output is left as it was.
// input and output may be the same buffer. AverageChannels does not allocate.
func AverageChannels(input, output PixelBuffer, cfg FilterConfig) error {
	if err := Check(input, output, cfg); err != nil {
		return err
	}
	AverageRange(input, output, cfg, 0, cfg.Length)
	return nil
}

// Check runs the validation AverageChannels performs before writing anything.
func Check(input, output PixelBuffer, cfg FilterConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := checkBuffer("input", input, cfg.Length); err != nil {
		return err
	}
	return checkBuffer("output", output, cfg.Length)
}

// AverageRange applies the filter to pixel indices [lo, hi) only.
//
// It performs no length checks; callers must have validated the buffers with
// Check for a length of at least hi. Each pixel depends only on its own input
// values, so disjoint ranges may run concurrently against the same buffers.
func AverageRange(input, output PixelBuffer, cfg FilterConfig, lo, hi int) {
	if lo >= hi {
		return
	}
	k := newKernel(cfg)
	in, inPlanar := input.(*Planar)
	out, outPlanar := output.(*Planar)
	if inPlanar && outPlanar {
		k.planar(in, out, lo, hi)
		return
	}
	k.generic(input, output, lo, hi)
}

// kernel holds the per-call constants of the averaging pass.
type kernel struct {
	divisor          uint16
	incR, incG, incB bool
	exR, exG, exB    bool
	mode             ExcludedMode
}

func newKernel(cfg FilterConfig) kernel {
	return kernel{
		divisor: uint16(cfg.Divisor()), //nolint:gosec // 0..3
		incR:    cfg.IncludeRed,
		incG:    cfg.IncludeGreen,
		incB:    cfg.IncludeBlue,
		exR:     cfg.ExcludeRed,
		exG:     cfg.ExcludeGreen,
		exB:     cfg.ExcludeBlue,
		mode:    cfg.Excluded,
	}
}

// average returns the values to write for a non-transparent pixel.
// With a zero divisor the input values pass through.
func (k *kernel) average(r, g, b uint8) (uint8, uint8, uint8) {
	if k.divisor == 0 {
		return r, g, b
	}
	var sum uint16
	if k.incR {
		sum += uint16(r)
	}
	if k.incG {
		sum += uint16(g)
	}
	if k.incB {
		sum += uint16(b)
	}
	// sum <= 3*255 and divisor >= 1 bound the quotient to 255.
	avg := uint8(sum / k.divisor) //nolint:gosec // bounded above
	return avg, avg, avg
}

// resolve returns the value for one output channel and whether to write it.
func (k *kernel) resolve(excluded bool, v, in uint8) (uint8, bool) {
	if !excluded {
		return v, true
	}
	switch k.mode {
	case ExcludedZero:
		return 0, true
	case ExcludedCopy:
		return in, true
	default:
		return 0, false
	}
}

func (k *kernel) planar(in, out *Planar, lo, hi int) {
	inR, inG, inB, inA := in.R[lo:hi], in.G[lo:hi], in.B[lo:hi], in.A[lo:hi]
	outR, outG, outB, outA := out.R[lo:hi], out.G[lo:hi], out.B[lo:hi], out.A[lo:hi]

	for i := range inA {
		r, g, b, a := inR[i], inG[i], inB[i], inA[i]
		if a == 0 {
			outR[i], outG[i], outB[i], outA[i] = r, g, b, a
			continue
		}

		vr, vg, vb := k.average(r, g, b)
		if v, ok := k.resolve(k.exR, vr, r); ok {
			outR[i] = v
		}
		if v, ok := k.resolve(k.exG, vg, g); ok {
			outG[i] = v
		}
		if v, ok := k.resolve(k.exB, vb, b); ok {
			outB[i] = v
		}
		outA[i] = a
	}
}

func (k *kernel) generic(in, out PixelBuffer, lo, hi int) {
	for i := lo; i < hi; i++ {
		r, g, b, a := in.At(Red, i), in.At(Green, i), in.At(Blue, i), in.At(Alpha, i)
		if a == 0 {
			out.Set(Red, i, r)
			out.Set(Green, i, g)
			out.Set(Blue, i, b)
			out.Set(Alpha, i, a)
			continue
		}

		vr, vg, vb := k.average(r, g, b)
		if v, ok := k.resolve(k.exR, vr, r); ok {
			out.Set(Red, i, v)
		}
		if v, ok := k.resolve(k.exG, vg, g); ok {
			out.Set(Green, i, v)
		}
		if v, ok := k.resolve(k.exB, vb, b); ok {
			out.Set(Blue, i, v)
		}
		out.Set(Alpha, i, a)
	}
}
