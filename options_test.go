package quadcomp

import (
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.width != DefaultWidth || o.height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", o.width, o.height, DefaultWidth, DefaultHeight)
	}
	if o.variant != VariantYUV420 {
		t.Errorf("variant = %v, want YUV420", o.variant)
	}
	if o.layout != LegacyLayout {
		t.Errorf("layout = %v, want legacy", o.layout)
	}
	if o.backend != BackendAuto {
		t.Errorf("backend = %v, want auto", o.backend)
	}
	if o.clearColor != [4]float64{} {
		t.Errorf("clear = %v, want transparent black", o.clearColor)
	}
	if err := o.validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestOptionsApply(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithSize(640, 360),
		WithVariant(VariantPackedRGB),
		WithLayout(FourUpLayout),
		WithBackend(BackendSoftware),
		WithClearColor(0.1, 0.2, 0.3, 0.4),
		WithShaders("vs", "fs"),
	} {
		opt(&o)
	}
	if o.width != 640 || o.height != 360 {
		t.Errorf("size = %dx%d", o.width, o.height)
	}
	if o.variant != VariantPackedRGB || o.layout != FourUpLayout || o.backend != BackendSoftware {
		t.Errorf("variant/layout/backend = %v/%v/%v", o.variant, o.layout, o.backend)
	}
	if o.clearColor != [4]float64{0.1, 0.2, 0.3, 0.4} {
		t.Errorf("clear = %v", o.clearColor)
	}
	if o.vertexSource != "vs" || o.fragmentSource != "fs" {
		t.Errorf("shaders = %q/%q", o.vertexSource, o.fragmentSource)
	}
}

func TestWithDeviceImpliesGPU(t *testing.T) {
	o := defaultOptions()
	WithDevice(nil, nil)(&o)
	if o.backend != BackendGPU {
		t.Errorf("backend = %v, want gpu", o.backend)
	}
	o = defaultOptions()
	WithDeviceProvider(nil)(&o)
	if o.backend != BackendGPU {
		t.Errorf("backend = %v, want gpu", o.backend)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"negative", WithSize(-2, 2), ErrInvalidSize},
		{"odd height", WithSize(2, 3), ErrInvalidSize},
		{"negative layout entry", WithLayout(Layout{0, 1, 2, -1}), ErrInvalidLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			if err := o.validate(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// The packed variant ignores the layout.
	o := defaultOptions()
	WithVariant(VariantPackedRGB)(&o)
	WithLayout(Layout{9, 9, 9, 9})(&o)
	if err := o.validate(); err != nil {
		t.Errorf("packed with unused layout: %v", err)
	}
}

func TestBackendParse(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"", BackendAuto},
		{"auto", BackendAuto},
		{"gpu", BackendGPU},
		{"software", BackendSoftware},
		{"cpu", BackendSoftware},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if tt.in != "" && tt.in != "cpu" && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
	if _, err := ParseBackend("metal"); err == nil {
		t.Error("ParseBackend(metal): want error")
	}
}
