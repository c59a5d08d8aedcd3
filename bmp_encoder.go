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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyBitmap 位图为空或尺寸无效
	ErrEmptyBitmap = errors.New("bmp: empty bitmap")
	// ErrPixelBufferSize 像素缓冲长度与尺寸不符
	ErrPixelBufferSize = errors.New("bmp: pixel buffer does not match dimensions")
)

// EncodeOptions 编码选项
type EncodeOptions struct {
	// BitsPerPixel 输出位深, 0 表示按透明度自动选择24或32
	BitsPerPixel int
	// ICCProfile 内嵌ICC配置文件, 非空时写出V5头
	ICCProfile []byte
	// Intent V5头的渲染意图, 0 表示 IntentImages
	Intent RenderingIntent
	// Color64 64位输出的转换方式
	Color64 Color64Mode

	densitySet bool
	xDensity   int32
	yDensity   int32
}

// SetDensity 设置分辨率(像素/米)
// 入参: x 水平分辨率, y 垂直分辨率
func (o *EncodeOptions) SetDensity(x, y int) {
	o.densitySet = true
	o.xDensity = int32(x)
	o.yDensity = int32(y)
}

type encoder struct {
	opts    *EncodeOptions
	bmp     *Bitmap
	bpp     int
	alpha   bool
	stride  int
	palette *Palette
	fh      FileHeader
	info    InfoHeader
	rowFunc generateRowFunc
}

type generateRowFunc func(e *encoder, y int, row []byte)

// strategize 选择位深、头部版本与压缩方式, 计算各偏移
// 返回: error 错误信息
func (e *encoder) strategize() error {
	b := e.bmp
	if b.Width <= 0 || b.Height <= 0 {
		return ErrEmptyBitmap
	}
	if int64(b.Width)*int64(b.Height) > MaxPixelCount {
		return UnsupportedError("dimensions too large")
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return ErrPixelBufferSize
	}
	e.bpp = e.opts.BitsPerPixel
	if e.bpp == 0 {
		e.bpp = 24
		if b.HasAlpha {
			e.bpp = 32
		}
	}
	switch e.bpp {
	case 1, 2, 4, 8:
		e.palette = BuildPalette(b.Pix, e.bpp)
		e.rowFunc = generateRowIndexed
	case 16:
		e.rowFunc = generateRow16
	case 24:
		e.rowFunc = generateRow24
	case 32:
		e.rowFunc = generateRow32
	case 64:
		e.rowFunc = generateRow64
	default:
		return UnsupportedError(fmt.Sprintf("writing %d bits per pixel", e.bpp))
	}
	e.alpha = b.HasAlpha && e.bpp == 32
	if len(e.opts.ICCProfile) > MaxICCProfileSize {
		return UnsupportedError("ICC profile too large")
	}

	e.stride = rowStride(b.Width, e.bpp)
	h := InfoHeader{
		Version:       HeaderV3,
		HeaderSize:    sizeV3,
		Width:         int32(b.Width),
		Height:        int32(b.Height),
		Planes:        1,
		BitsPerPixel:  uint16(e.bpp),
		Compression:   CompressionRGB,
		ImageSize:     uint32(e.stride * b.Height),
		XPelsPerMeter: DefaultDensity,
		YPelsPerMeter: DefaultDensity,
	}
	if e.opts.densitySet {
		h.XPelsPerMeter, h.YPelsPerMeter = e.opts.xDensity, e.opts.yDensity
	}
	if e.palette != nil {
		h.ColorsUsed = 1 << uint(e.bpp)
	}
	switch {
	case len(e.opts.ICCProfile) > 0:
		h.Version, h.HeaderSize = HeaderV5, sizeV5
		h.ColorSpaceType = ColorSpaceProfileEmbedded
		h.Intent = e.opts.Intent
		if h.Intent == 0 {
			h.Intent = IntentImages
		}
	case e.alpha || e.bpp == 64:
		h.Version, h.HeaderSize = HeaderV4, sizeV4
		h.ColorSpaceType = ColorSpaceSRGB
	}
	if e.alpha {
		h.Compression = CompressionBitFields
		h = h.WithMasks(0x00FF0000, 0x0000FF00, 0x000000FF, 0xFF000000)
	}

	paletteSize := 4 * int(h.ColorsUsed)
	pixelOffset := FileHeaderSize + int(h.HeaderSize) + paletteSize
	fileSize := pixelOffset + e.stride*b.Height
	if h.Version == HeaderV5 {
		h.ProfileOffset = h.HeaderSize + uint32(paletteSize) + h.ImageSize
		h.ProfileSize = uint32(len(e.opts.ICCProfile))
		fileSize += len(e.opts.ICCProfile)
	}
	e.info = h
	e.fh = FileHeader{
		Type:     MarkerBitmap,
		FileSize: uint32(fileSize),
		Offset:   uint32(pixelOffset),
	}
	return nil
}

// writeHeaders 写入文件头、信息头和调色板
// 入参: w 输出
// 返回: error 错误信息
func (e *encoder) writeHeaders(w io.Writer) error {
	var fh [FileHeaderSize]byte
	writeFileHeader(fh[:], e.fh)
	if _, err := w.Write(fh[:]); err != nil {
		return err
	}
	ih, err := writeInfoHeader(e.info)
	if err != nil {
		return err
	}
	if _, err := w.Write(ih); err != nil {
		return err
	}
	if e.palette == nil {
		return nil
	}
	pal := make([]byte, 4*int(e.info.ColorsUsed))
	for i, c := range e.palette.Colors {
		pal[i*4+0] = c[2]
		pal[i*4+1] = c[1]
		pal[i*4+2] = c[0]
	}
	_, err = w.Write(pal)
	return err
}

func generateRowIndexed(e *encoder, y int, row []byte) {
	src := e.bmp.Pix[y*e.bmp.Width*4:]
	for x := 0; x < e.bmp.Width; x++ {
		idx := e.palette.Index(src[x*4], src[x*4+1], src[x*4+2])
		bit := x * e.bpp
		row[bit/8] |= byte(idx) << uint(8-e.bpp-bit%8)
	}
}

func generateRow16(e *encoder, y int, row []byte) {
	src := e.bmp.Pix[y*e.bmp.Width*4:]
	for x := 0; x < e.bmp.Width; x++ {
		// RGB555
		v := uint16(src[x*4]>>3)<<10 | uint16(src[x*4+1]>>3)<<5 | uint16(src[x*4+2]>>3)
		binary.LittleEndian.PutUint16(row[x*2:], v)
	}
}

func generateRow24(e *encoder, y int, row []byte) {
	src := e.bmp.Pix[y*e.bmp.Width*4:]
	for x := 0; x < e.bmp.Width; x++ {
		row[x*3+0] = src[x*4+2]
		row[x*3+1] = src[x*4+1]
		row[x*3+2] = src[x*4+0]
	}
}

func generateRow32(e *encoder, y int, row []byte) {
	src := e.bmp.Pix[y*e.bmp.Width*4:]
	for x := 0; x < e.bmp.Width; x++ {
		row[x*4+0] = src[x*4+2]
		row[x*4+1] = src[x*4+1]
		row[x*4+2] = src[x*4+0]
		if e.alpha {
			row[x*4+3] = src[x*4+3]
		}
	}
}

func generateRow64(e *encoder, y int, row []byte) {
	src := e.bmp.Pix[y*e.bmp.Width*4:]
	for x := 0; x < e.bmp.Width; x++ {
		p := src[x*4 : x*4+4]
		ConvertToS213(row[x*8:x*8+8], p[0], p[1], p[2], p[3], e.opts.Color64)
	}
}

// writeBits 自底向上写出像素行
// 入参: w 输出
// 返回: error 错误信息
func (e *encoder) writeBits(w io.Writer) error {
	row := make([]byte, e.stride)
	for j := e.bmp.Height - 1; j >= 0; j-- {
		for i := range row {
			row[i] = 0
		}
		e.rowFunc(e, j, row)
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// EncodeBitmap 将位图编码为BMP
// 入参: w 输出, b 位图, opts 选项(可为 nil)
// 返回: error 错误信息
func EncodeBitmap(w io.Writer, b *Bitmap, opts *EncodeOptions) error {
	if b == nil {
		return ErrEmptyBitmap
	}
	if opts == nil {
		opts = &EncodeOptions{}
	}
	e := &encoder{opts: opts, bmp: b}
	if err := e.strategize(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := e.writeHeaders(bw); err != nil {
		return err
	}
	if err := e.writeBits(bw); err != nil {
		return err
	}
	if e.info.Version == HeaderV5 {
		if _, err := bw.Write(opts.ICCProfile); err != nil {
			return err
		}
	}
	return bw.Flush()
}
