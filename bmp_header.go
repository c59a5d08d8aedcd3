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
	"encoding/binary"
	"fmt"
)

// 信息头字节数
const (
	sizeCore   = 12
	sizeOS2V1  = 16
	sizeV3     = 40
	sizeAdobe  = 52
	sizeAdobeA = 56
	sizeOS2V2  = 64
	sizeV4     = 108
	sizeV5     = 124
	maxHeader  = 0xFFFF
)

// HeaderVersion 信息头版本, 由头部大小决定
type HeaderVersion int

const (
	// HeaderCore Windows 2.x / OS/2 1.x, 12 字节
	HeaderCore HeaderVersion = iota
	// HeaderOS2Short OS/2 2.x 精简头, 16 字节
	HeaderOS2Short
	// HeaderV3 BITMAPINFOHEADER, 40 字节
	HeaderV3
	// HeaderAdobeV3 带RGB掩码, 52 字节
	HeaderAdobeV3
	// HeaderAdobeV3Alpha 带RGBA掩码, 56 字节
	HeaderAdobeV3Alpha
	// HeaderOS2V2 OS/2 2.x 完整头, 64 字节
	HeaderOS2V2
	// HeaderV4 BITMAPV4HEADER, 108 字节
	HeaderV4
	// HeaderV5 BITMAPV5HEADER, 124 字节
	HeaderV5
	// HeaderV3Compatible 未知的不小于40字节的头, 按V3解析
	HeaderV3Compatible
)

// headerVersionOf 根据头部大小判断版本
// 入参: size 头部大小
// 返回: HeaderVersion 版本, error 错误信息
func headerVersionOf(size uint32) (HeaderVersion, error) {
	switch size {
	case sizeCore:
		return HeaderCore, nil
	case sizeOS2V1:
		return HeaderOS2Short, nil
	case sizeV3:
		return HeaderV3, nil
	case sizeAdobe:
		return HeaderAdobeV3, nil
	case sizeAdobeA:
		return HeaderAdobeV3Alpha, nil
	case sizeOS2V2:
		return HeaderOS2V2, nil
	case sizeV4:
		return HeaderV4, nil
	case sizeV5:
		return HeaderV5, nil
	}
	if size > sizeV3 && size <= maxHeader {
		return HeaderV3Compatible, nil
	}
	return 0, FormatError(fmt.Sprintf("unsupported info header size %d", size))
}

// FileHeader 文件头
type FileHeader struct {
	Type      FileMarker
	FileSize  uint32
	Reserved1 uint16
	Reserved2 uint16
	Offset    uint32
}

// InfoHeader 规范化后的信息头, 覆盖全部磁盘布局
type InfoHeader struct {
	HeaderSize      uint32
	Version         HeaderVersion
	Width           int32
	Height          int32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     Compression
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
	RedMask         uint32
	GreenMask       uint32
	BlueMask        uint32
	AlphaMask       uint32
	ColorSpaceType  uint32
	Intent          RenderingIntent
	ProfileOffset   uint32
	ProfileSize     uint32
}

// IsBottomUp 行是否自底向上存储
// 返回: bool 是否自底向上
func (h InfoHeader) IsBottomUp() bool {
	return h.Height >= 0
}

// AbsHeight 获取高度绝对值
// 返回: int 高度
func (h InfoHeader) AbsHeight() int {
	if h.Height < 0 {
		return -int(h.Height)
	}
	return int(h.Height)
}

// WithMasks 返回带有指定通道掩码的副本
// 入参: r 红, g 绿, b 蓝, a 透明
// 返回: InfoHeader 新信息头
func (h InfoHeader) WithMasks(r, g, b, a uint32) InfoHeader {
	h.RedMask, h.GreenMask, h.BlueMask, h.AlphaMask = r, g, b, a
	return h
}

// Masks 获取通道掩码
// 返回: ColorMasks 掩码集合
func (h InfoHeader) Masks() ColorMasks {
	return NewColorMasks(h.RedMask, h.GreenMask, h.BlueMask, h.AlphaMask)
}

// hasHeaderMasks 掩码是否位于固定布局内
func (h InfoHeader) hasHeaderMasks() bool {
	switch h.Version {
	case HeaderAdobeV3, HeaderAdobeV3Alpha, HeaderV4, HeaderV5:
		return true
	case HeaderV3Compatible:
		return h.HeaderSize >= sizeAdobe
	}
	return false
}

// trailingMaskSize 头部之后紧跟的掩码字节数
// 返回: int 字节数
func (h InfoHeader) trailingMaskSize() int {
	if h.hasHeaderMasks() {
		return 0
	}
	if h.Version != HeaderV3 && h.Version != HeaderV3Compatible {
		return 0
	}
	switch h.Compression {
	case CompressionBitFields:
		return 12
	case CompressionAlphaBitFields:
		return 16
	}
	return 0
}

// paletteEntrySize 调色板每项字节数
// 返回: int 字节数
func (h InfoHeader) paletteEntrySize() int {
	if h.Version == HeaderCore {
		return 3
	}
	return 4
}

// isOS2 是否使用OS/2压缩编码
func (h InfoHeader) isOS2() bool {
	return h.Version == HeaderOS2Short || h.Version == HeaderOS2V2
}

// parseFileHeader 解析14字节文件头
// 入参: b 数据
// 返回: FileHeader 文件头, error 错误信息
func parseFileHeader(b []byte) (FileHeader, error) {
	fh := FileHeader{
		Type:      FileMarker(binary.LittleEndian.Uint16(b[0:2])),
		FileSize:  binary.LittleEndian.Uint32(b[2:6]),
		Reserved1: binary.LittleEndian.Uint16(b[6:8]),
		Reserved2: binary.LittleEndian.Uint16(b[8:10]),
		Offset:    binary.LittleEndian.Uint32(b[10:14]),
	}
	if !fh.Type.IsValid() {
		return FileHeader{}, FormatError(fmt.Sprintf("invalid signature %q", b[0:2]))
	}
	return fh, nil
}

// writeFileHeader 写入14字节文件头
// 入参: b 目标, fh 文件头
func writeFileHeader(b []byte, fh FileHeader) {
	binary.LittleEndian.PutUint16(b[0:2], uint16(fh.Type))
	binary.LittleEndian.PutUint32(b[2:6], fh.FileSize)
	binary.LittleEndian.PutUint16(b[6:8], fh.Reserved1)
	binary.LittleEndian.PutUint16(b[8:10], fh.Reserved2)
	binary.LittleEndian.PutUint32(b[10:14], fh.Offset)
}

// parseInfoHeader 解析信息头, b 包含完整头部(含前4字节大小)
// 入参: b 数据
// 返回: InfoHeader 信息头, error 错误信息
func parseInfoHeader(b []byte) (InfoHeader, error) {
	size := binary.LittleEndian.Uint32(b[0:4])
	version, err := headerVersionOf(size)
	if err != nil {
		return InfoHeader{}, err
	}
	if len(b) < int(size) {
		return InfoHeader{}, FormatError("short info header")
	}
	h := InfoHeader{HeaderSize: size, Version: version}
	switch version {
	case HeaderCore:
		h.Width = int32(binary.LittleEndian.Uint16(b[4:6]))
		h.Height = int32(binary.LittleEndian.Uint16(b[6:8]))
		h.Planes = binary.LittleEndian.Uint16(b[8:10])
		h.BitsPerPixel = binary.LittleEndian.Uint16(b[10:12])
		h.Compression = CompressionRGB
	case HeaderOS2Short:
		h.Width = int32(binary.LittleEndian.Uint32(b[4:8]))
		h.Height = int32(binary.LittleEndian.Uint32(b[8:12]))
		h.Planes = binary.LittleEndian.Uint16(b[12:14])
		h.BitsPerPixel = binary.LittleEndian.Uint16(b[14:16])
		h.Compression = CompressionRGB
	case HeaderOS2V2:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
	case HeaderV3, HeaderV3Compatible:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
		if h.HeaderSize >= sizeAdobe {
			parseMasks(b, &h, size >= sizeAdobeA)
		}
	case HeaderAdobeV3:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
		parseMasks(b, &h, false)
	case HeaderAdobeV3Alpha:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
		parseMasks(b, &h, true)
	case HeaderV4:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
		parseMasks(b, &h, true)
		h.ColorSpaceType = binary.LittleEndian.Uint32(b[56:60])
	case HeaderV5:
		if err := parseV3Fields(b, &h); err != nil {
			return InfoHeader{}, err
		}
		parseMasks(b, &h, true)
		h.ColorSpaceType = binary.LittleEndian.Uint32(b[56:60])
		h.Intent = RenderingIntent(binary.LittleEndian.Uint32(b[108:112]))
		h.ProfileOffset = binary.LittleEndian.Uint32(b[112:116])
		h.ProfileSize = binary.LittleEndian.Uint32(b[116:120])
	}
	return h, nil
}

// parseV3Fields 解析BITMAPINFOHEADER公共的40字节
// 入参: b 数据, h 信息头
// 返回: error 错误信息
func parseV3Fields(b []byte, h *InfoHeader) error {
	h.Width = int32(binary.LittleEndian.Uint32(b[4:8]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:12]))
	h.Planes = binary.LittleEndian.Uint16(b[12:14])
	h.BitsPerPixel = binary.LittleEndian.Uint16(b[14:16])
	h.ImageSize = binary.LittleEndian.Uint32(b[20:24])
	h.XPelsPerMeter = int32(binary.LittleEndian.Uint32(b[24:28]))
	h.YPelsPerMeter = int32(binary.LittleEndian.Uint32(b[28:32]))
	h.ColorsUsed = binary.LittleEndian.Uint32(b[32:36])
	h.ColorsImportant = binary.LittleEndian.Uint32(b[36:40])
	code := binary.LittleEndian.Uint32(b[16:20])
	var err error
	if h.isOS2() {
		h.Compression, err = os2Compression(code)
	} else {
		h.Compression, err = windowsCompression(code)
	}
	return err
}

// parseMasks 解析头部内的通道掩码
// 入参: b 数据, h 信息头, alpha 是否包含透明掩码
func parseMasks(b []byte, h *InfoHeader, alpha bool) {
	h.RedMask = binary.LittleEndian.Uint32(b[40:44])
	h.GreenMask = binary.LittleEndian.Uint32(b[44:48])
	h.BlueMask = binary.LittleEndian.Uint32(b[48:52])
	if alpha {
		h.AlphaMask = binary.LittleEndian.Uint32(b[52:56])
	}
}

// windowsCompression 映射Windows压缩编码
// 入参: code 磁盘编码
// 返回: Compression 压缩类型, error 错误信息
func windowsCompression(code uint32) (Compression, error) {
	switch code {
	case 0:
		return CompressionRGB, nil
	case 1:
		return CompressionRLE8, nil
	case 2:
		return CompressionRLE4, nil
	case 3:
		return CompressionBitFields, nil
	case 4:
		return CompressionJPEG, nil
	case 5:
		return CompressionPNG, nil
	case 6:
		return CompressionAlphaBitFields, nil
	case 11, 12, 13:
		return 0, UnsupportedError(fmt.Sprintf("CMYK compression %d", code))
	}
	return 0, FormatError(fmt.Sprintf("unknown compression %d", code))
}

// os2Compression 映射OS/2压缩编码
// 入参: code 磁盘编码
// 返回: Compression 压缩类型, error 错误信息
func os2Compression(code uint32) (Compression, error) {
	switch code {
	case 0:
		return CompressionRGB, nil
	case 1:
		return CompressionRLE8, nil
	case 2:
		return CompressionRLE4, nil
	case 3:
		return CompressionHuffman1D, nil
	case 4:
		return CompressionRLE24, nil
	}
	return 0, UnsupportedError(fmt.Sprintf("OS/2 compression %d", code))
}

// fileCode 获取Windows磁盘编码
// 返回: uint32 编码
func (c Compression) fileCode() uint32 {
	switch c {
	case CompressionRLE8:
		return 1
	case CompressionRLE4:
		return 2
	case CompressionBitFields:
		return 3
	case CompressionJPEG:
		return 4
	case CompressionPNG:
		return 5
	case CompressionAlphaBitFields:
		return 6
	}
	return 0
}

// writeInfoHeader 按版本序列化信息头, 仅支持 V3/V4/V5
// 入参: h 信息头
// 返回: []byte 数据, error 错误信息
func writeInfoHeader(h InfoHeader) ([]byte, error) {
	switch h.Version {
	case HeaderV3:
		return writeV3Header(h), nil
	case HeaderV4:
		return writeV4Header(h), nil
	case HeaderV5:
		return writeV5Header(h), nil
	}
	return nil, UnsupportedError(fmt.Sprintf("writing header version %d", h.Version))
}

// writeV3Header 写入40字节头
func writeV3Header(h InfoHeader) []byte {
	b := make([]byte, sizeV3)
	putV3Fields(b, h, sizeV3)
	return b
}

// writeV4Header 写入108字节头, 端点和伽马写零
func writeV4Header(h InfoHeader) []byte {
	b := make([]byte, sizeV4)
	putV3Fields(b, h, sizeV4)
	putV4Fields(b, h)
	return b
}

// writeV5Header 写入124字节头
func writeV5Header(h InfoHeader) []byte {
	b := make([]byte, sizeV5)
	putV3Fields(b, h, sizeV5)
	putV4Fields(b, h)
	binary.LittleEndian.PutUint32(b[108:112], uint32(h.Intent))
	binary.LittleEndian.PutUint32(b[112:116], h.ProfileOffset)
	binary.LittleEndian.PutUint32(b[116:120], h.ProfileSize)
	return b
}

func putV3Fields(b []byte, h InfoHeader, size uint32) {
	binary.LittleEndian.PutUint32(b[0:4], size)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:14], h.Planes)
	binary.LittleEndian.PutUint16(b[14:16], h.BitsPerPixel)
	binary.LittleEndian.PutUint32(b[16:20], h.Compression.fileCode())
	binary.LittleEndian.PutUint32(b[20:24], h.ImageSize)
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.XPelsPerMeter))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.YPelsPerMeter))
	binary.LittleEndian.PutUint32(b[32:36], h.ColorsUsed)
	binary.LittleEndian.PutUint32(b[36:40], h.ColorsImportant)
}

func putV4Fields(b []byte, h InfoHeader) {
	binary.LittleEndian.PutUint32(b[40:44], h.RedMask)
	binary.LittleEndian.PutUint32(b[44:48], h.GreenMask)
	binary.LittleEndian.PutUint32(b[48:52], h.BlueMask)
	binary.LittleEndian.PutUint32(b[52:56], h.AlphaMask)
	binary.LittleEndian.PutUint32(b[56:60], h.ColorSpaceType)
}
