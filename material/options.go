package material

// Option configures a material.
type Option func(*options)

type options struct {
	label        string
	preprocessor Preprocessor
	spirv        bool
	unlit        bool
}

func defaultOptions() options {
	return options{
		label:        "basic",
		preprocessor: Preprocess,
	}
}

// WithLabel sets the material name and GPU debug label prefix.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithPreprocessor replaces the default shader preprocessor.
func WithPreprocessor(p Preprocessor) Option {
	return func(o *options) {
		if p != nil {
			o.preprocessor = p
		}
	}
}

// WithSPIRV compiles the preprocessed WGSL to SPIR-V with naga before
// creating the shader module, for backends that only accept SPIR-V.
func WithSPIRV(enabled bool) Option {
	return func(o *options) {
		o.spirv = enabled
	}
}

// WithUnlit skips lighting and outputs the flat color.
func WithUnlit(unlit bool) Option {
	return func(o *options) {
		o.unlit = unlit
	}
}
