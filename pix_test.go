package pixfx

import (
	"errors"
	"image"
	"testing"
)

func TestDimsValidate(t *testing.T) {
	tests := []struct {
		d  Dims
		ok bool
	}{
		{Dims{Width: 2, Height: 2, Stride: 8, Shape: ShapeRGBA8888}, true},
		{Dims{Width: 2, Height: 2, Stride: 6, Shape: ShapeRGB888}, true},
		{Dims{Width: 2, Height: 2, Stride: 7, Shape: ShapeRGBA8888}, false},
		{Dims{Width: 0, Height: 2, Stride: 8, Shape: ShapeRGBA8888}, false},
		{Dims{Width: 2, Height: 2, Stride: 8}, false},
	}
	for _, tt := range tests {
		err := tt.d.Validate()
		if tt.ok != (err == nil) {
			t.Errorf("%+v: err = %v", tt.d, err)
		} else if err != nil && !errors.Is(err, ErrInvalidBuffer) {
			t.Errorf("%+v: err %v does not wrap ErrInvalidBuffer", tt.d, err)
		}
	}
}

func TestValidateProcessArgs(t *testing.T) {
	src, _ := NewBuffer(4, 3)
	d := Dims{Width: 4, Height: 3, Stride: 16, Shape: ShapeRGBA8888}
	if _, err := ValidateProcessArgs(make([]byte, 48), d, src, nil); err != nil {
		t.Fatal(err)
	}
	cases := map[string]struct {
		dst []byte
		roi *image.Rectangle
	}{
		"nil dst":     {nil, nil},
		"aliased dst": {src.Buffer(), nil},
		"short dst":   {make([]byte, 47), nil},
		"roi outside": {make([]byte, 48), &image.Rectangle{Max: image.Pt(5, 1)}},
		"empty roi":   {make([]byte, 48), &image.Rectangle{Min: image.Pt(1, 1), Max: image.Pt(1, 2)}},
	}
	for name, c := range cases {
		if _, err := ValidateProcessArgs(c.dst, d, src, c.roi); !errors.Is(err, ErrInvalidBuffer) {
			t.Errorf("%s: err = %v, want ErrInvalidBuffer", name, err)
		}
	}
	if _, err := ValidateProcessArgs(make([]byte, 48), d, nil, nil); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("nil src: err = %v", err)
	}
}
