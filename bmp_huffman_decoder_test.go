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
	"testing"
)

func decodeLines(data []byte, width, lines int, blackIsZero bool) ([][]byte, []bool) {
	hd := NewHuffmanDecoder(NewBitStream(bytes.NewReader(data)))
	var rows [][]byte
	var oks []bool
	for i := 0; i < lines; i++ {
		row := make([]byte, width)
		oks = append(oks, hd.DecodeLine(row, blackIsZero))
		rows = append(rows, row)
	}
	return rows, oks
}

func TestHuffmanDecodeLine(t *testing.T) {
	tests := []struct {
		name        string
		bits        string
		width       int
		blackIsZero bool
		want        []byte
	}{
		{"white black white", "0111 10 1000", 8, false, []byte{0, 0, 255, 255, 255, 0, 0, 0}},
		{"black is zero", "0111 10 1000", 8, true, []byte{255, 255, 0, 0, 0, 255, 255, 255}},
		{"leading EOL", "000000000001 0111 10 1000", 8, false, []byte{0, 0, 255, 255, 255, 0, 0, 0}},
		{"zero white run", "00110101 11 0111", 4, false, []byte{255, 255, 0, 0}},
		{"run clipped to width", "10011", 4, false, []byte{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, oks := decodeLines(bitString(tt.bits), tt.width, 1, tt.blackIsZero)
			if !oks[0] {
				t.Fatal("DecodeLine reported truncation")
			}
			if !bytes.Equal(rows[0], tt.want) {
				t.Errorf("row = %v, want %v", rows[0], tt.want)
			}
		})
	}
}

func TestHuffmanMakeupCodes(t *testing.T) {
	// 白色64(补充码) + 白色6(终止码)
	rows, oks := decodeLines(bitString("11011 1110"), 70, 1, false)
	if !oks[0] {
		t.Fatal("DecodeLine reported truncation")
	}
	for x := 0; x < 70; x++ {
		if rows[0][x] != 0 {
			t.Fatalf("x=%d is %d, want white", x, rows[0][x])
		}
	}
}

func TestHuffmanTruncated(t *testing.T) {
	_, oks := decodeLines(bitString("0111"), 8, 1, false)
	if oks[0] {
		t.Error("DecodeLine = true on truncated data")
	}
}

func TestHuffmanResyncAfterInvalidCode(t *testing.T) {
	// 8个0不是任何白色码的前缀, 跳到下一个EOL后继续
	data := bitString("00000000 1 000000000001 0111 10 1000")
	rows, oks := decodeLines(data, 8, 2, false)
	if !oks[0] || !oks[1] {
		t.Fatalf("oks = %v", oks)
	}
	want := []byte{0, 0, 255, 255, 255, 0, 0, 0}
	if !bytes.Equal(rows[1], want) {
		t.Errorf("row after resync = %v, want %v", rows[1], want)
	}
}

func TestHuffmanEOLEndsLine(t *testing.T) {
	// 第一行白色2后遇到EOL, 第二行正常解码
	data := bitString("0111 000000000001 1000 10 0111")
	rows, oks := decodeLines(data, 7, 2, false)
	if !oks[0] || !oks[1] {
		t.Fatalf("oks = %v", oks)
	}
	want := []byte{0, 0, 0, 255, 255, 255, 0}
	if !bytes.Equal(rows[1], want) {
		t.Errorf("second row = %v, want %v", rows[1], want)
	}
}

func TestDecodeHuffmanBitmap(t *testing.T) {
	pal := paletteBytes(4, [3]byte{0, 0, 0}, [3]byte{255, 255, 255})
	black, white := [4]byte{0, 0, 0, 255}, [4]byte{255, 255, 255, 255}

	t.Run("complete", func(t *testing.T) {
		data := bitString("000000000001 0111 10 1000 000000000001 10011")
		b := mustDecode(t, assemble("BM", os2V2Header(8, 2, 1, 3, 2), pal, data), nil)
		want := [][4]byte{white, white, black, black, black, white, white, white}
		for x, w := range want {
			if got := pixelAt(b, x, 1); got != w {
				t.Errorf("(%d,1) = %v, want %v", x, got, w)
			}
			if got := pixelAt(b, x, 0); got != white {
				t.Errorf("(%d,0) = %v, want white", x, got)
			}
		}
		if b.HasAlpha {
			t.Error("HasAlpha = true")
		}
	})
	t.Run("truncated", func(t *testing.T) {
		data := bitString("000000000001 0111 10 1000")
		b := mustDecode(t, assemble("BM", os2V2Header(8, 2, 1, 3, 2), pal, data), nil)
		if got := pixelAt(b, 2, 1); got != black {
			t.Errorf("(2,1) = %v, want black", got)
		}
	})
	t.Run("inverted palette", func(t *testing.T) {
		inv := paletteBytes(4, [3]byte{255, 255, 255}, [3]byte{0, 0, 0})
		data := bitString("0111 10 1000")
		b := mustDecode(t, assemble("BM", os2V2Header(8, 1, 1, 3, 2), inv, data), nil)
		if got := pixelAt(b, 0, 0); got != white {
			t.Errorf("(0,0) = %v, want white", got)
		}
		if got := pixelAt(b, 2, 0); got != black {
			t.Errorf("(2,0) = %v, want black", got)
		}
	})
}

func TestBitStream(t *testing.T) {
	bs := NewBitStream(bytes.NewReader([]byte{0xA5}))
	if v, avail := bs.PeekNBits(4); v != 0xA || avail != 4 {
		t.Errorf("PeekNBits(4) = %#x, %d", v, avail)
	}
	if v, avail := bs.PeekNBits(12); v != 0xA50 || avail != 8 {
		t.Errorf("PeekNBits(12) = %#x, %d", v, avail)
	}
	bs.SkipBits(4)
	var got uint32
	for i := 0; i < 4; i++ {
		bit, ok := bs.Read1Bit()
		if !ok {
			t.Fatalf("Read1Bit %d failed", i)
		}
		got = got<<1 | bit
	}
	if got != 0x5 {
		t.Errorf("low nibble = %#x", got)
	}
	if _, ok := bs.Read1Bit(); ok {
		t.Error("Read1Bit succeeded past end")
	}
	if bs.Err() != nil {
		t.Errorf("Err = %v, want nil at EOF", bs.Err())
	}
}
