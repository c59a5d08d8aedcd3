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

import "math/bits"

// ColorMask 单通道位域掩码
type ColorMask struct {
	Mask       uint32
	RightShift uint32
	Scale      uint32
	Present    bool
}

// NewColorMask 根据32位掩码计算位置和缩放系数
// 入参: mask 掩码
// 返回: ColorMask 通道掩码
func NewColorMask(mask uint32) ColorMask {
	if mask == 0 {
		return ColorMask{}
	}
	shift := uint32(bits.TrailingZeros32(mask))
	n := bits.OnesCount32(mask >> shift)
	scale := uint32(1)
	if n < 8 {
		scale = 256 >> uint(n)
	}
	return ColorMask{Mask: mask, RightShift: shift, Scale: scale, Present: true}
}

// Extract 将像素中的通道扩展到8位, 缺失通道返回255
// 入参: pixel 像素值
// 返回: uint8 通道值
func (m ColorMask) Extract(pixel uint32) uint8 {
	if !m.Present {
		return 255
	}
	v := (pixel & m.Mask) >> m.RightShift
	if v > 255 {
		v = 255
	}
	v *= m.Scale
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ColorMasks 四通道掩码集合
type ColorMasks struct {
	R, G, B, A ColorMask
}

// NewColorMasks 创建掩码集合
// 入参: r 红, g 绿, b 蓝, a 透明
// 返回: ColorMasks 掩码集合
func NewColorMasks(r, g, b, a uint32) ColorMasks {
	return ColorMasks{
		R: NewColorMask(r),
		G: NewColorMask(g),
		B: NewColorMask(b),
		A: NewColorMask(a),
	}
}

// ExtractRGBA 提取四个通道
// 入参: pixel 像素值
// 返回: r, g, b, a 通道值
func (m ColorMasks) ExtractRGBA(pixel uint32) (r, g, b, a uint8) {
	return m.R.Extract(pixel), m.G.Extract(pixel), m.B.Extract(pixel), m.A.Extract(pixel)
}

// defaultMasks 无显式位域时的默认掩码
// 入参: bpp 位深
// 返回: r, g, b, a 掩码
func defaultMasks(bpp uint16) (r, g, b, a uint32) {
	switch bpp {
	case 16:
		return 0x7C00, 0x03E0, 0x001F, 0
	case 32, 64:
		return 0x00FF0000, 0x0000FF00, 0x000000FF, 0
	}
	return 0, 0, 0, 0
}
