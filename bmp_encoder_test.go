// Copyright 2026 肖其顿 (XIAO QI DUN)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	xbmp "golang.org/x/image/bmp"
	"golang.org/x/image/colornames"
)

var testColors = []color.RGBA{
	colornames.Black, colornames.White, colornames.Red, colornames.Blue,
	colornames.Green, colornames.Yellow, colornames.Orange, colornames.Purple,
	colornames.Teal, colornames.Navy, colornames.Maroon, colornames.Olive,
	colornames.Silver, colornames.Gray, colornames.Lime, colornames.Aqua,
	colornames.Coral, colornames.Salmon, colornames.Khaki, colornames.Plum,
}

// patternImage 按光栅顺序循环使用前 n 种颜色
func patternImage(w, h, n int, alpha bool) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := testColors[(x+y*w)%n]
			a := c.A
			if alpha {
				a = uint8((x*40 + y*7) % 256)
			}
			m.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
		}
	}
	return m
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		bpp       int
		colors    int
		alpha     bool
		tolerance int
		version   HeaderVersion
	}{
		{1, 2, false, 0, HeaderV3},
		{2, 4, false, 0, HeaderV3},
		{4, 16, false, 0, HeaderV3},
		{8, 20, false, 0, HeaderV3},
		{16, 20, false, 7, HeaderV3},
		{24, 20, false, 0, HeaderV3},
		{32, 20, false, 0, HeaderV3},
		{32, 20, true, 0, HeaderV4},
		{64, 20, true, 1, HeaderV4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dbit alpha=%v", tt.bpp, tt.alpha), func(t *testing.T) {
			src := patternImage(7, 5, tt.colors, tt.alpha)
			var buf bytes.Buffer
			if err := EncodeWithOptions(&buf, src, &EncodeOptions{BitsPerPixel: tt.bpp}); err != nil {
				t.Fatalf("encode: %v", err)
			}
			b := mustDecode(t, buf.Bytes(), nil)
			if b.Width != 7 || b.Height != 5 {
				t.Fatalf("size = %dx%d", b.Width, b.Height)
			}
			if b.InfoHeader.Version != tt.version {
				t.Errorf("version = %v, want %v", b.InfoHeader.Version, tt.version)
			}
			if int(b.InfoHeader.BitsPerPixel) != tt.bpp {
				t.Errorf("bpp = %d", b.InfoHeader.BitsPerPixel)
			}
			if b.HasAlpha != tt.alpha {
				t.Errorf("HasAlpha = %v, want %v", b.HasAlpha, tt.alpha)
			}
			if b.FileHeader.FileSize != uint32(buf.Len()) {
				t.Errorf("file size = %d, want %d", b.FileHeader.FileSize, buf.Len())
			}
			for i := 0; i < len(src.Pix); i++ {
				if d := absDiff(src.Pix[i], b.Pix[i]); d > tt.tolerance {
					t.Fatalf("byte %d: got %d, want %d", i, b.Pix[i], src.Pix[i])
				}
			}
		})
	}
}

func TestEncodeDefaultDepth(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, patternImage(3, 3, 4, false)); err != nil {
		t.Fatal(err)
	}
	if bpp := binary.LittleEndian.Uint16(buf.Bytes()[28:30]); bpp != 24 {
		t.Errorf("opaque image bpp = %d, want 24", bpp)
	}
	buf.Reset()
	if err := Encode(&buf, patternImage(3, 3, 4, true)); err != nil {
		t.Fatal(err)
	}
	if bpp := binary.LittleEndian.Uint16(buf.Bytes()[28:30]); bpp != 32 {
		t.Errorf("translucent image bpp = %d, want 32", bpp)
	}
}

func TestEncodePaletteOverflow(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	m.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	m.SetNRGBA(1, 0, color.NRGBA{255, 255, 255, 255})
	m.SetNRGBA(2, 0, color.NRGBA{200, 200, 200, 255})
	var buf bytes.Buffer
	if err := EncodeWithOptions(&buf, m, &EncodeOptions{BitsPerPixel: 1}); err != nil {
		t.Fatal(err)
	}
	b := mustDecode(t, buf.Bytes(), nil)
	if got := pixelAt(b, 2, 0); got != [4]byte{255, 255, 255, 255} {
		t.Errorf("overflow color = %v, want nearest white", got)
	}
}

func TestEncodeICCProfile(t *testing.T) {
	profile := []byte("not-really-an-icc-profile")
	for _, alpha := range []bool{false, true} {
		t.Run(fmt.Sprintf("alpha=%v", alpha), func(t *testing.T) {
			src := patternImage(5, 3, 8, alpha)
			var buf bytes.Buffer
			opts := &EncodeOptions{ICCProfile: profile}
			if err := EncodeWithOptions(&buf, src, opts); err != nil {
				t.Fatal(err)
			}
			b := mustDecode(t, buf.Bytes(), nil)
			if b.InfoHeader.Version != HeaderV5 {
				t.Errorf("version = %v, want HeaderV5", b.InfoHeader.Version)
			}
			if b.InfoHeader.ColorSpaceType != ColorSpaceProfileEmbedded {
				t.Errorf("color space = %#x", b.InfoHeader.ColorSpaceType)
			}
			if b.InfoHeader.Intent != IntentImages {
				t.Errorf("intent = %d", b.InfoHeader.Intent)
			}
			if !bytes.Equal(b.ICCProfile, profile) {
				t.Errorf("profile = %q", b.ICCProfile)
			}
			if b.HasAlpha != alpha {
				t.Errorf("HasAlpha = %v", b.HasAlpha)
			}
			if !bytes.Equal(b.Pix, src.Pix) {
				t.Error("pixels differ")
			}
		})
	}
}

func TestEncodeDensity(t *testing.T) {
	var buf bytes.Buffer
	opts := &EncodeOptions{}
	opts.SetDensity(3780, 1890)
	if err := EncodeWithOptions(&buf, patternImage(2, 2, 2, false), opts); err != nil {
		t.Fatal(err)
	}
	b := mustDecode(t, buf.Bytes(), nil)
	if b.InfoHeader.XPelsPerMeter != 3780 || b.InfoHeader.YPelsPerMeter != 1890 {
		t.Errorf("density = %d,%d", b.InfoHeader.XPelsPerMeter, b.InfoHeader.YPelsPerMeter)
	}

	buf.Reset()
	if err := Encode(&buf, patternImage(2, 2, 2, false)); err != nil {
		t.Fatal(err)
	}
	b = mustDecode(t, buf.Bytes(), nil)
	if b.InfoHeader.XPelsPerMeter != DefaultDensity {
		t.Errorf("default density = %d", b.InfoHeader.XPelsPerMeter)
	}
}

func TestEncodeColor64Modes(t *testing.T) {
	src := patternImage(4, 2, 8, true)
	for _, mode := range []Color64Mode{Color64ToSrgb, Color64Linear, Color64None} {
		var buf bytes.Buffer
		if err := EncodeWithOptions(&buf, src, &EncodeOptions{BitsPerPixel: 64, Color64: mode}); err != nil {
			t.Fatal(err)
		}
		b := mustDecode(t, buf.Bytes(), &DecodeOptions{Color64: mode})
		for i := range src.Pix {
			if absDiff(src.Pix[i], b.Pix[i]) > 1 {
				t.Fatalf("mode %d byte %d: got %d, want %d", mode, i, b.Pix[i], src.Pix[i])
			}
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeWithOptions(&buf, image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil); !errors.Is(err, ErrEmptyBitmap) {
		t.Errorf("empty image err = %v", err)
	}
	if err := EncodeWithOptions(&buf, patternImage(1, 1, 1, false), &EncodeOptions{BitsPerPixel: 12}); !isUnsupportedError(err) {
		t.Errorf("12 bit err = %v", err)
	}
	bad := &Bitmap{Width: 2, Height: 2, Pix: make([]byte, 3)}
	if err := EncodeBitmap(&buf, bad, nil); !errors.Is(err, ErrPixelBufferSize) {
		t.Errorf("short buffer err = %v", err)
	}
}

func TestEncodeMatchesReference(t *testing.T) {
	for _, bpp := range []int{8, 24} {
		t.Run(fmt.Sprintf("%dbit", bpp), func(t *testing.T) {
			src := patternImage(9, 4, 20, false)
			var buf bytes.Buffer
			if err := EncodeWithOptions(&buf, src, &EncodeOptions{BitsPerPixel: bpp}); err != nil {
				t.Fatal(err)
			}
			ref, err := xbmp.Decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("reference decode: %v", err)
			}
			if ref.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v", ref.Bounds())
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 9; x++ {
					r1, g1, b1, a1 := ref.At(x, y).RGBA()
					r2, g2, b2, a2 := src.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
						t.Fatalf("(%d,%d): reference %v, source %v", x, y, ref.At(x, y), src.At(x, y))
					}
				}
			}
		})
	}
}

func TestDecodeReferenceEncoded(t *testing.T) {
	src := patternImage(6, 3, 20, false)
	var buf bytes.Buffer
	if err := xbmp.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	b := mustDecode(t, buf.Bytes(), nil)
	if !bytes.Equal(b.Pix, src.Pix) {
		t.Error("pixels differ from source")
	}
}

func TestBuildPalette(t *testing.T) {
	pix := []byte{
		1, 2, 3, 255,
		1, 2, 3, 0,
		4, 5, 6, 255,
		7, 8, 9, 255,
	}
	p := BuildPalette(pix, 1)
	if len(p.Colors) != 2 {
		t.Fatalf("palette has %d colors, want 2", len(p.Colors))
	}
	if p.Index(4, 5, 6) != 1 {
		t.Errorf("Index(4,5,6) = %d", p.Index(4, 5, 6))
	}
	if p.Index(7, 8, 9) != 1 {
		t.Errorf("nearest of (7,8,9) = %d, want 1", p.Index(7, 8, 9))
	}
	if p.FindClosestColor(0, 0, 0) != 0 {
		t.Errorf("nearest of black = %d, want 0", p.FindClosestColor(0, 0, 0))
	}
}
