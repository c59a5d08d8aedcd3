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
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

// maxEmbeddedSize 内嵌JPEG/PNG数据最大字节数
const maxEmbeddedSize = 256 * 1024 * 1024

// readBitsEmbedded 解码内嵌的JPEG或PNG流, 按头部尺寸裁剪
// 返回: error 错误信息
func (d *decoder) readBitsEmbedded() error {
	size := int64(d.info.ImageSize)
	if size == 0 {
		size = int64(d.fh.FileSize) - int64(d.fh.Offset)
	}
	if size <= 0 || size > maxEmbeddedSize {
		return FormatError(fmt.Sprintf("bad embedded %s size %d", d.info.Compression, size))
	}
	data := make([]byte, size)
	if err := d.s.ReadFull(data); err != nil {
		return err
	}
	var (
		src image.Image
		err error
	)
	switch d.info.Compression {
	case CompressionJPEG:
		src, err = jpeg.Decode(bytes.NewReader(data))
	case CompressionPNG:
		src, err = png.Decode(bytes.NewReader(data))
		if err == nil {
			d.embeddedAlpha = pngHasAlpha(src)
		}
	}
	if err != nil {
		return fmt.Errorf("bmp: embedded %s: %w", d.info.Compression, err)
	}
	dst := &image.NRGBA{
		Pix:    d.img.Data(),
		Stride: int(d.img.Stride()),
		Rect:   image.Rect(0, 0, d.width, d.height),
	}
	drawNRGBA(dst, src)
	return nil
}

// pngHasAlpha 根据PNG解码结果的颜色模型判断是否带透明度
// 入参: src 解码后的图像
// 返回: bool 是否带透明度
func pngHasAlpha(src image.Image) bool {
	if p, ok := src.(*image.Paletted); ok {
		for _, c := range p.Palette {
			if _, _, _, a := c.RGBA(); a != 0xFFFF {
				return true
			}
		}
		return false
	}
	switch src.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}
