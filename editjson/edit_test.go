package editjson

import (
	"testing"

	"github.com/rasterlab/photoedit/compiler"
	"github.com/rasterlab/photoedit/geom"
	"github.com/rasterlab/photoedit/mask"
)

func sampleEdit() compiler.Edit {
	crop := compiler.Rectangle{CenterX: 0.5, CenterY: 0.41, Width: 0.81, Height: 0.73}
	return compiler.Edit{
		Crop:            &crop,
		RotationDegrees: 12.5,
		CropPolicy:      geom.PreserveAspect,
		MaskedEdits: []compiler.MaskedEdit{
			{
				Mask: mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.Global}}}},
				Edit: compiler.GlobalEdit{
					Exposure:       0.333333343,
					Contrast:       -0.2,
					Vibrance:       0.15,
					CurveLuma:      []compiler.CurvePoint{{X: 0, Y: 0}, {X: 0.5, Y: 0.62}, {X: 1, Y: 1}},
					ColorMix:       [8]compiler.ColorMixGroup{{HueShift: 0.1, SaturationScale: 1.2, LuminanceScale: 0.9}},
					VignetteAmount: -0.3,
				},
			},
			{
				Mask: mask.Mask{Terms: []mask.Term{
					{Primitive: mask.Primitive{Kind: mask.RadialGradient, CenterX: 0.3, CenterY: 0.7, RadiusX: 0.2, RadiusY: 0.25, Feather: 0.1}},
					{Primitive: mask.Primitive{Kind: mask.LinearGradient, X0: 0, Y0: 0, X1: 1, Y1: 1}, Subtracted: true},
				}},
				Edit: compiler.GlobalEdit{Saturation: -0.4, Temperature: 0.1, Tint: -0.05},
			},
		},
		ResizeWidth:  1920,
		ResizeHeight: 1080,
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	edit := sampleEdit()
	data, err := Marshal(edit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if *got.Crop != *edit.Crop {
		t.Fatalf("Crop mismatch: got %+v want %+v", got.Crop, edit.Crop)
	}
	if got.RotationDegrees != edit.RotationDegrees {
		t.Fatalf("RotationDegrees mismatch: got %v want %v", got.RotationDegrees, edit.RotationDegrees)
	}
	if got.CropPolicy != edit.CropPolicy {
		t.Fatalf("CropPolicy mismatch: got %v want %v", got.CropPolicy, edit.CropPolicy)
	}
	if len(got.MaskedEdits) != len(edit.MaskedEdits) {
		t.Fatalf("MaskedEdits length mismatch: got %d want %d", len(got.MaskedEdits), len(edit.MaskedEdits))
	}
	if got.MaskedEdits[0].Edit.Exposure != edit.MaskedEdits[0].Edit.Exposure {
		t.Fatalf("Exposure mismatch: got %v want %v", got.MaskedEdits[0].Edit.Exposure, edit.MaskedEdits[0].Edit.Exposure)
	}
	if len(got.MaskedEdits[1].Mask.Terms) != 2 {
		t.Fatalf("expected 2 mask terms on second masked edit, got %d", len(got.MaskedEdits[1].Mask.Terms))
	}
	if !got.MaskedEdits[1].Mask.Terms[1].Subtracted {
		t.Fatalf("expected second term to remain Subtracted after round trip")
	}
	if got.ResizeWidth != edit.ResizeWidth || got.ResizeHeight != edit.ResizeHeight {
		t.Fatalf("resize dims mismatch: got %dx%d want %dx%d", got.ResizeWidth, got.ResizeHeight, edit.ResizeWidth, edit.ResizeHeight)
	}
}

func TestFloat32PrecisionSurvivesRoundTrip(t *testing.T) {
	edit := compiler.Edit{MaskedEdits: []compiler.MaskedEdit{{
		Mask: mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.Global}}}},
		Edit: compiler.GlobalEdit{Exposure: 0.1234567},
	}}}
	data, err := Marshal(edit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.MaskedEdits[0].Edit.Exposure != edit.MaskedEdits[0].Edit.Exposure {
		t.Fatalf("lost float32 precision: got %v want %v", got.MaskedEdits[0].Edit.Exposure, edit.MaskedEdits[0].Edit.Exposure)
	}
}

func TestUnknownMaskPrimitiveKindIsRejected(t *testing.T) {
	_, err := Parse([]byte(`{"masked_edits":[{"mask":{"terms":[{"primitive":{"kind":"not_a_kind"}}]},"edit":{}}]}`))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized mask primitive kind")
	}
}
