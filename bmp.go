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

// Package bmp 纯 Go 语言 BMP/DIB 编解码器, 支持 Windows 与 OS/2 全部头部版本
package bmp

import (
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"
)

// Bitmap 解码结果, Pix 为自顶向下的非预乘RGBA8像素
type Bitmap struct {
	Width      int
	Height     int
	Pix        []byte
	HasAlpha   bool
	ICCProfile []byte
	FileHeader FileHeader
	InfoHeader InfoHeader
}

// NewBitmap 将任意图像转换为位图
// 入参: m 图像
// 返回: *Bitmap 位图
func NewBitmap(m image.Image) *Bitmap {
	r := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	drawNRGBA(dst, m)
	return &Bitmap{
		Width:    r.Dx(),
		Height:   r.Dy(),
		Pix:      dst.Pix,
		HasAlpha: !dst.Opaque(),
	}
}

// drawNRGBA 将 src 的左上角对齐复制到 dst, 超出部分裁剪
// NRGBA 输入直接复制, 保留全透明像素的颜色
// 入参: dst 目标, src 源图像
func drawNRGBA(dst *image.NRGBA, src image.Image) {
	s, ok := src.(*image.NRGBA)
	if !ok {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}
	r := dst.Bounds().Intersect(s.Bounds().Sub(s.Bounds().Min))
	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], s.Pix[s.PixOffset(s.Rect.Min.X, s.Rect.Min.Y+y):])
	}
}

// Image 转换为Go标准库Image, 共享像素缓冲
// 返回: *image.NRGBA 图像
func (b *Bitmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Decoder BMP解码器, 可依次读取位图数组中的每个图像
type Decoder struct {
	s    *streamReader
	opts DecodeOptions
	next int64
	done bool
}

// NewDecoder 创建解码器
// 入参: r 读取器, opts 选项(可为 nil)
// 返回: *Decoder 解码器
func NewDecoder(r io.Reader, opts *DecodeOptions) *Decoder {
	d := &Decoder{s: newStreamReader(r)}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

// DecodeBitmap 解码下一个图像, 没有更多图像时返回 io.EOF
// 返回: *Bitmap 位图, error 错误信息
func (d *Decoder) DecodeBitmap() (*Bitmap, error) {
	if d.done {
		return nil, io.EOF
	}
	d.done = true
	if err := d.s.SeekTo(d.next); err != nil {
		return nil, err
	}
	start := d.s.Position()
	b, array, err := newDecoder(d.s, d.opts).decode()
	if err != nil {
		return nil, err
	}
	if array != nil {
		if next := int64(arrayNextOffset(*array)); next > start {
			d.next = next
			d.done = false
		}
	}
	return b, nil
}

// Decode 解码下一个图像
// 返回: image.Image 图像, error 错误信息
func (d *Decoder) Decode() (image.Image, error) {
	b, err := d.DecodeBitmap()
	if err != nil {
		return nil, err
	}
	return b.Image(), nil
}

// DecodeAll 解码所有剩余图像
// 返回: []*Bitmap 位图列表, error 错误信息
func (d *Decoder) DecodeAll() ([]*Bitmap, error) {
	var bitmaps []*Bitmap
	for {
		b, err := d.DecodeBitmap()
		if err == io.EOF {
			break
		}
		if err != nil {
			return bitmaps, err
		}
		bitmaps = append(bitmaps, b)
	}
	return bitmaps, nil
}

// arrayNextOffset 位图数组头中下一个数组头的偏移, 0 表示结束
// 入参: fh 数组头
// 返回: uint32 偏移
func arrayNextOffset(fh FileHeader) uint32 {
	return uint32(fh.Reserved1) | uint32(fh.Reserved2)<<16
}

// DecodeBitmap 解码BMP数据中的第一个图像
// 入参: r 读取器, opts 选项(可为 nil)
// 返回: *Bitmap 位图, error 错误信息
func DecodeBitmap(r io.Reader, opts *DecodeOptions) (*Bitmap, error) {
	return NewDecoder(r, opts).DecodeBitmap()
}

// Decode 使用默认选项解码BMP图像
// 入参: r 读取器
// 返回: image.Image 图像, error 错误信息
func Decode(r io.Reader) (image.Image, error) {
	return NewDecoder(r, nil).Decode()
}

// DecodeConfig 只读取头部获取图像配置
// 入参: r 读取器
// 返回: image.Config 图像配置, error 错误信息
func DecodeConfig(r io.Reader) (image.Config, error) {
	d := newDecoder(newStreamReader(r), DecodeOptions{})
	fh, _, err := d.readFirstHeader()
	if err != nil {
		return image.Config{}, err
	}
	if err := d.readInfoHeader(); err != nil {
		return image.Config{}, err
	}
	if err := d.validate(); err != nil {
		return image.Config{}, err
	}
	height := d.height
	if fh.Type.IsIcon() {
		height /= 2
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      d.width,
		Height:     height,
	}, nil
}

// Encode 使用默认选项将图像编码为BMP
// 入参: w 输出, m 图像
// 返回: error 错误信息
func Encode(w io.Writer, m image.Image) error {
	return EncodeWithOptions(w, m, nil)
}

// EncodeWithOptions 将图像编码为BMP
// 入参: w 输出, m 图像, opts 选项(可为 nil)
// 返回: error 错误信息
func EncodeWithOptions(w io.Writer, m image.Image, opts *EncodeOptions) error {
	return EncodeBitmap(w, NewBitmap(m), opts)
}

func init() {
	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", Decode, DecodeConfig)
	image.RegisterFormat("bmp", "BA", Decode, DecodeConfig)
}
