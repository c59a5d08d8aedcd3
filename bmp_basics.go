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

import "errors"

const (
	// FileHeaderSize 文件头字节数
	FileHeaderSize = 14
	// MaxPaletteEntries 最大调色板项数
	MaxPaletteEntries = 256
	// MaxICCProfileSize 内嵌ICC配置文件最大字节数
	MaxICCProfileSize = 1 << 20
	// MaxPixelCount 最大像素数
	MaxPixelCount = 1 << 28
	// DefaultDensity 默认分辨率(像素/米)
	DefaultDensity = 2835
)

// FileMarker 文件头标记
type FileMarker uint16

const (
	// MarkerBitmap Windows位图 "BM"
	MarkerBitmap FileMarker = 0x4D42
	// MarkerBitmapArray OS/2位图数组 "BA"
	MarkerBitmapArray FileMarker = 0x4142
	// MarkerColorIcon OS/2彩色图标 "CI"
	MarkerColorIcon FileMarker = 0x4943
	// MarkerColorPointer OS/2彩色指针 "CP"
	MarkerColorPointer FileMarker = 0x5043
	// MarkerIcon OS/2单色图标 "IC"
	MarkerIcon FileMarker = 0x4349
	// MarkerPointer OS/2单色指针 "PT"
	MarkerPointer FileMarker = 0x5450
)

// IsValid 是否为已知标记
// 返回: bool 是否有效
func (m FileMarker) IsValid() bool {
	switch m {
	case MarkerBitmap, MarkerBitmapArray, MarkerColorIcon, MarkerColorPointer, MarkerIcon, MarkerPointer:
		return true
	}
	return false
}

// IsIcon 是否为图标或指针
// 返回: bool 是否为图标
func (m FileMarker) IsIcon() bool {
	return m == MarkerColorIcon || m == MarkerColorPointer || m == MarkerIcon || m == MarkerPointer
}

// IsColorIcon 是否为彩色图标或指针
// 返回: bool 是否为彩色
func (m FileMarker) IsColorIcon() bool {
	return m == MarkerColorIcon || m == MarkerColorPointer
}

func (m FileMarker) String() string {
	return string([]byte{byte(m), byte(m >> 8)})
}

// Compression 统一压缩类型
type Compression int

const (
	// CompressionRGB 无压缩
	CompressionRGB Compression = iota
	// CompressionRLE8 8位游程编码
	CompressionRLE8
	// CompressionRLE4 4位游程编码
	CompressionRLE4
	// CompressionBitFields 位域
	CompressionBitFields
	// CompressionJPEG 内嵌JPEG
	CompressionJPEG
	// CompressionPNG 内嵌PNG
	CompressionPNG
	// CompressionAlphaBitFields 带透明通道的位域
	CompressionAlphaBitFields
	// CompressionRLE24 OS/2 24位游程编码
	CompressionRLE24
	// CompressionHuffman1D OS/2 1位霍夫曼编码
	CompressionHuffman1D
)

func (c Compression) String() string {
	switch c {
	case CompressionRGB:
		return "RGB"
	case CompressionRLE8:
		return "RLE8"
	case CompressionRLE4:
		return "RLE4"
	case CompressionBitFields:
		return "BitFields"
	case CompressionJPEG:
		return "JPEG"
	case CompressionPNG:
		return "PNG"
	case CompressionAlphaBitFields:
		return "AlphaBitFields"
	case CompressionRLE24:
		return "RLE24"
	case CompressionHuffman1D:
		return "Huffman1D"
	}
	return "unknown"
}

// isRLE 是否为游程编码
func (c Compression) isRLE() bool {
	return c == CompressionRLE4 || c == CompressionRLE8 || c == CompressionRLE24
}

// isBitFields 是否为位域编码
func (c Compression) isBitFields() bool {
	return c == CompressionBitFields || c == CompressionAlphaBitFields
}

// 颜色空间类型
const (
	// ColorSpaceCalibratedRGB 校准RGB
	ColorSpaceCalibratedRGB uint32 = 0
	// ColorSpaceSRGB sRGB 'sRGB'
	ColorSpaceSRGB uint32 = 0x73524742
	// ColorSpaceWindows Windows默认 'Win '
	ColorSpaceWindows uint32 = 0x57696E20
	// ColorSpaceProfileLinked 链接配置文件 'LINK'
	ColorSpaceProfileLinked uint32 = 0x4C494E4B
	// ColorSpaceProfileEmbedded 内嵌配置文件 'MBED'
	ColorSpaceProfileEmbedded uint32 = 0x4D424544
)

// RenderingIntent 渲染意图
type RenderingIntent uint32

const (
	// IntentBusiness 饱和度优先
	IntentBusiness RenderingIntent = 1
	// IntentGraphics 相对色度
	IntentGraphics RenderingIntent = 2
	// IntentImages 感知
	IntentImages RenderingIntent = 4
	// IntentAbsColorimetric 绝对色度
	IntentAbsColorimetric RenderingIntent = 8
)

// UndefinedPixelMode 游程编码未定义像素处理方式
type UndefinedPixelMode int

const (
	// UndefinedTransparent 未定义像素为透明黑
	UndefinedTransparent UndefinedPixelMode = iota
	// UndefinedLeave 未定义像素保持调色板第0项
	UndefinedLeave
)

// Color64Mode 64位像素转换方式
type Color64Mode int

const (
	// Color64ToSrgb 线性光转换为sRGB
	Color64ToSrgb Color64Mode = iota
	// Color64Linear 仅缩放, 不做伽马转换
	Color64Linear
	// Color64None 原始值
	Color64None
)

// ErrNotSupported 需要定位但流不支持定位
var ErrNotSupported = errors.New("bmp: stream does not support seeking")

// FormatError 输入不是有效的BMP
type FormatError string

func (e FormatError) Error() string { return "bmp: invalid format: " + string(e) }

// UnsupportedError 输入使用了有效但未实现的特性
type UnsupportedError string

func (e UnsupportedError) Error() string { return "bmp: unsupported feature: " + string(e) }
