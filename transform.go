// SPDX-License-Identifier: MIT
package rtff

// Transform is the user-supplied spectral processing step run once per
// hop between analysis and synthesis. input holds one spectrum slice
// per input stream's channel (flattened across streams in the order
// they were configured), each of length SpectrumSize; output must be
// filled the same way for each output stream's channel. Implementations
// must not retain input or output slices beyond the call.
type Transform interface {
	Process(input, output [][]complex64)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(input, output [][]complex64)

// Process implements Transform.
func (f TransformFunc) Process(input, output [][]complex64) {
	f(input, output)
}

// IdentityTransform copies each input channel spectrum to the
// corresponding output channel spectrum unchanged. It requires the
// input and output channel layouts to match exactly; it is most useful
// for 1-in/1-out Filter configurations and as a reconstruction baseline
// in tests.
var IdentityTransform Transform = TransformFunc(func(input, output [][]complex64) {
	for i := range output {
		if i < len(input) {
			copy(output[i], input[i])
		}
	}
})

// GainTransform scales every bin of every channel by a fixed linear
// gain. It is a minimal non-trivial example of a Transform: it neither
// copies nor zeroes, it scales.
func GainTransform(gain float32) Transform {
	g := complex(gain, 0)
	return TransformFunc(func(input, output [][]complex64) {
		for i := range output {
			if i >= len(input) {
				continue
			}
			in, out := input[i], output[i]
			for b := range out {
				out[b] = in[b] * g
			}
		}
	})
}

// TeeTransform wraps inner, additionally invoking tap with the
// untouched input spectrum before running inner.Process. tap must not
// retain the slices it is given, nor modify them; it is meant for
// read-only observers such as a spectrum-magnitude publisher riding
// alongside the real transform.
func TeeTransform(inner Transform, tap func(input [][]complex64)) Transform {
	if inner == nil {
		inner = IdentityTransform
	}
	return TransformFunc(func(input, output [][]complex64) {
		if tap != nil {
			tap(input)
		}
		inner.Process(input, output)
	})
}
