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

import "math"

const (
	s213Scale = 8192.0
	s213Min   = -4.0
	s213Max   = 3.99987793
)

// S213ToFloat 将s2.13定点数转换为浮点数
// 入参: v 定点数
// 返回: float64 范围 [-4, 4)
func S213ToFloat(v uint16) float64 {
	return float64(int16(v)) / s213Scale
}

// FloatToS213 将浮点数转换为s2.13定点数
// 入参: f 浮点数
// 返回: uint16 定点数
func FloatToS213(f float64) uint16 {
	if f < s213Min {
		f = s213Min
	} else if f > s213Max {
		f = s213Max
	}
	return uint16(int32(math.Round(f*s213Scale)) & 0xFFFF)
}

// LinearToSRGB 线性光转sRGB
// 入参: v 线性值
// 返回: float64 sRGB值
func LinearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// SRGBToLinear sRGB转线性光
// 入参: v sRGB值
// 返回: float64 线性值
func SRGBToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// toByte 将 [0,1] 值四舍五入到 [0,255]
func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

// convertChannel 解码单个通道
// 入参: v 定点数, mode 转换方式, gamma 是否应用伽马
// 返回: uint8 8位通道值
func convertChannel(v uint16, mode Color64Mode, gamma bool) uint8 {
	switch mode {
	case Color64None:
		return uint8(v >> 8)
	case Color64Linear:
		return toByte(S213ToFloat(v))
	}
	f := clamp01(S213ToFloat(v))
	if gamma {
		f = LinearToSRGB(f)
	}
	return toByte(f)
}

// ConvertPixel64 将8字节BGRA像素转换为8位sRGB
// 入参: p 像素数据(B,G,R,A 小端16位), mode 转换方式
// 返回: r, g, b, a 通道值
func ConvertPixel64(p []byte, mode Color64Mode) (r, g, b, a uint8) {
	bv := uint16(p[0]) | uint16(p[1])<<8
	gv := uint16(p[2]) | uint16(p[3])<<8
	rv := uint16(p[4]) | uint16(p[5])<<8
	av := uint16(p[6]) | uint16(p[7])<<8
	b = convertChannel(bv, mode, true)
	g = convertChannel(gv, mode, true)
	r = convertChannel(rv, mode, true)
	a = convertChannel(av, mode, false)
	return r, g, b, a
}

// encodeChannel 编码单个通道
// 入参: c 8位通道值, mode 转换方式, gamma 是否应用伽马
// 返回: uint16 定点数
func encodeChannel(c uint8, mode Color64Mode, gamma bool) uint16 {
	if mode == Color64None {
		return uint16(c)<<8 | uint16(c)
	}
	f := float64(c) / 255
	if gamma && mode == Color64ToSrgb {
		f = SRGBToLinear(f)
	}
	return FloatToS213(f)
}

// ConvertToS213 将8位RGBA写为8字节BGRA像素
// 入参: dst 目标, r 红, g 绿, b 蓝, a 透明, mode 转换方式
func ConvertToS213(dst []byte, r, g, b, a uint8, mode Color64Mode) {
	put := func(off int, v uint16) {
		dst[off] = byte(v)
		dst[off+1] = byte(v >> 8)
	}
	put(0, encodeChannel(b, mode, true))
	put(2, encodeChannel(g, mode, true))
	put(4, encodeChannel(r, mode, true))
	put(6, encodeChannel(a, mode, false))
}
