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
	"errors"
	"fmt"
	"io"
)

const maxArrayDepth = 16

// DecodeOptions 解码选项
type DecodeOptions struct {
	UndefinedPixels UndefinedPixelMode
	Color64         Color64Mode
}

// decoder 单次解码的状态, 不跨调用保留
type decoder struct {
	s    *streamReader
	opts DecodeOptions

	fh        FileHeader
	info      InfoHeader
	masks     ColorMasks
	palette   [][4]byte
	infoStart int64
	headerEnd int64
	profile   []byte

	width    int
	height   int
	img      *Image
	hasAlpha bool

	embeddedAlpha bool
}

// newDecoder 创建解码状态
// 入参: s 读取器, opts 选项
// 返回: *decoder 解码状态
func newDecoder(s *streamReader, opts DecodeOptions) *decoder {
	return &decoder{s: s, opts: opts}
}

// readFileHeader 读取14字节文件头
// 返回: FileHeader 文件头, error 错误信息
func (d *decoder) readFileHeader() (FileHeader, error) {
	var b [FileHeaderSize]byte
	if err := d.s.ReadFull(b[:]); err != nil {
		return FileHeader{}, err
	}
	return parseFileHeader(b[:])
}

// readFirstHeader 读取文件头, 跳过位图数组包装
// 返回: FileHeader 内层文件头, FileHeader 数组头(若有), error 错误信息
func (d *decoder) readFirstHeader() (FileHeader, *FileHeader, error) {
	fh, err := d.readFileHeader()
	if err != nil {
		return FileHeader{}, nil, err
	}
	var array *FileHeader
	for depth := 0; fh.Type == MarkerBitmapArray; depth++ {
		if depth >= maxArrayDepth {
			return FileHeader{}, nil, FormatError("bitmap array nested too deeply")
		}
		if array == nil {
			outer := fh
			array = &outer
		}
		if fh, err = d.readFileHeader(); err != nil {
			return FileHeader{}, nil, err
		}
	}
	return fh, array, nil
}

// decode 解码一个完整文件
// 返回: *Bitmap 结果, *FileHeader 数组头(若有), error 错误信息
func (d *decoder) decode() (*Bitmap, *FileHeader, error) {
	fh, array, err := d.readFirstHeader()
	if err != nil {
		return nil, nil, err
	}
	if fh.Type.IsIcon() {
		b, err := d.decodeIcon(fh)
		return b, array, err
	}
	if err := d.decodeBitmap(fh); err != nil {
		return nil, nil, err
	}
	return d.result(), array, nil
}

// result 组装解码结果
// 返回: *Bitmap 结果
func (d *decoder) result() *Bitmap {
	return &Bitmap{
		Width:      d.width,
		Height:     d.height,
		Pix:        d.img.Data(),
		HasAlpha:   d.hasAlpha,
		ICCProfile: d.profile,
		FileHeader: d.fh,
		InfoHeader: d.info,
	}
}

// decodeBitmap 在文件头之后解码一个普通位图
// 入参: fh 已读取的文件头
// 返回: error 错误信息
func (d *decoder) decodeBitmap(fh FileHeader) error {
	d.fh = fh
	if err := d.readInfoHeader(); err != nil {
		return err
	}
	if err := d.validate(); err != nil {
		return err
	}
	if err := d.readPalette(); err != nil {
		return err
	}
	d.headerEnd = d.s.Position()
	if err := d.readProfile(); err != nil {
		return err
	}
	if err := d.s.SeekTo(int64(fh.Offset)); err != nil {
		return err
	}
	d.img = NewImage(int32(d.width), int32(d.height))
	if err := d.decodePixels(); err != nil {
		return err
	}
	d.hasAlpha = d.alphaPresent()
	return nil
}

// readInfoHeader 读取信息头及紧随的位域掩码
// 返回: error 错误信息
func (d *decoder) readInfoHeader() error {
	d.infoStart = d.s.Position()
	var sizeBuf [4]byte
	if err := d.s.ReadFull(sizeBuf[:]); err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if _, err := headerVersionOf(size); err != nil {
		return err
	}
	b := make([]byte, size)
	copy(b, sizeBuf[:])
	if err := d.s.ReadFull(b[4:]); err != nil {
		return err
	}
	info, err := parseInfoHeader(b)
	if err != nil {
		return err
	}
	if n := info.trailingMaskSize(); n > 0 {
		var m [16]byte
		if err := d.s.ReadFull(m[:n]); err != nil {
			return err
		}
		var a uint32
		if n == 16 {
			a = binary.LittleEndian.Uint32(m[12:16])
		}
		info = info.WithMasks(binary.LittleEndian.Uint32(m[0:4]), binary.LittleEndian.Uint32(m[4:8]),
			binary.LittleEndian.Uint32(m[8:12]), a)
	} else if !info.Compression.isBitFields() {
		switch info.BitsPerPixel {
		case 16, 32, 64:
			info = info.WithMasks(defaultMasks(info.BitsPerPixel))
		}
	}
	d.info = info
	d.masks = info.Masks()
	return nil
}

// validate 校验尺寸、位深与压缩组合
// 返回: error 错误信息
func (d *decoder) validate() error {
	h := d.info
	d.width = int(h.Width)
	d.height = h.AbsHeight()
	if d.width <= 0 || d.height <= 0 {
		return FormatError(fmt.Sprintf("non-positive dimensions %dx%d", h.Width, h.Height))
	}
	if int64(d.width)*int64(d.height) > MaxPixelCount {
		return UnsupportedError("dimensions too large")
	}
	switch h.Compression {
	case CompressionJPEG, CompressionPNG:
		if h.HeaderSize < sizeV4 {
			return FormatError(fmt.Sprintf("%s compression requires a V4 or V5 header", h.Compression))
		}
		return nil
	}
	switch h.BitsPerPixel {
	case 1, 2, 4, 8, 16, 24, 32, 64:
	default:
		return FormatError(fmt.Sprintf("bad bit count %d", h.BitsPerPixel))
	}
	switch h.Compression {
	case CompressionHuffman1D:
		if h.BitsPerPixel != 1 {
			return FormatError(fmt.Sprintf("bad Huffman bit count %d", h.BitsPerPixel))
		}
	case CompressionRLE24:
		if h.BitsPerPixel != 24 {
			return FormatError(fmt.Sprintf("bad RLE24 bit count %d", h.BitsPerPixel))
		}
	case CompressionRLE4:
		if h.BitsPerPixel != 4 {
			return FormatError(fmt.Sprintf("bad RLE4 bit count %d", h.BitsPerPixel))
		}
	case CompressionRLE8:
		if h.BitsPerPixel != 8 {
			return FormatError(fmt.Sprintf("bad RLE8 bit count %d", h.BitsPerPixel))
		}
	case CompressionBitFields, CompressionAlphaBitFields:
		if h.BitsPerPixel == 64 {
			return FormatError("BITFIELDS is not allowed with 64 bit pixels")
		}
		if h.BitsPerPixel != 16 && h.BitsPerPixel != 32 {
			return FormatError(fmt.Sprintf("bad BITFIELDS bit count %d", h.BitsPerPixel))
		}
	}
	return nil
}

// readPalette 读取调色板, 仅用于不超过8位的图像
// 返回: error 错误信息
func (d *decoder) readPalette() error {
	bpp := int(d.info.BitsPerPixel)
	if bpp == 0 || bpp > 8 {
		return nil
	}
	n := int(d.info.ColorsUsed)
	if n == 0 {
		n = 1 << uint(bpp)
	}
	if n > MaxPaletteEntries {
		n = MaxPaletteEntries
	}
	entry := d.info.paletteEntrySize()
	buf := make([]byte, n*entry)
	if err := d.s.ReadFull(buf); err != nil {
		return err
	}
	d.palette = make([][4]byte, n)
	for i := range d.palette {
		p := buf[i*entry:]
		d.palette[i] = [4]byte{p[2], p[1], p[0], 255}
	}
	return nil
}

// readProfile 读取V5头内嵌的ICC配置文件, 失败时忽略
// 返回: error 仅在无法回到原位置时返回
func (d *decoder) readProfile() error {
	h := d.info
	if h.Version != HeaderV5 || h.ColorSpaceType != ColorSpaceProfileEmbedded {
		return nil
	}
	size := int32(h.ProfileSize)
	if size <= 0 || size > MaxICCProfileSize {
		return nil
	}
	pos := d.s.Position()
	if err := d.s.SeekTo(d.infoStart + int64(h.ProfileOffset)); err != nil {
		return nil
	}
	buf := make([]byte, size)
	if err := d.s.ReadFull(buf); err == nil {
		d.profile = buf
	}
	return d.s.SeekTo(pos)
}

// paletteColor 查找调色板, 越界时为不透明黑
// 入参: idx 索引
// 返回: [4]byte RGBA
func (d *decoder) paletteColor(idx int) [4]byte {
	if idx < len(d.palette) {
		return d.palette[idx]
	}
	return [4]byte{0, 0, 0, 255}
}

// destRow 将文件中的行号映射到输出行号
// 入参: y 文件行号
// 返回: int32 输出行号
func (d *decoder) destRow(y int) int32 {
	if d.info.IsBottomUp() {
		return int32(d.height - 1 - y)
	}
	return int32(y)
}

// decodePixels 根据位深与压缩类型分派
// 返回: error 错误信息
func (d *decoder) decodePixels() error {
	switch d.info.Compression {
	case CompressionHuffman1D:
		return d.readBitsHuffman()
	case CompressionRLE4, CompressionRLE8, CompressionRLE24:
		return d.readBitsRLE()
	case CompressionJPEG, CompressionPNG:
		return d.readBitsEmbedded()
	}
	return d.readBitsUncompressed()
}

// alphaPresent 结果是否带有透明度
// 返回: bool 是否带透明度
func (d *decoder) alphaPresent() bool {
	h := d.info
	switch {
	case h.BitsPerPixel == 32 && !h.Compression.isRLE() && h.AlphaMask != 0:
		return true
	case h.BitsPerPixel == 64 && h.Compression == CompressionRGB:
		return true
	case h.Compression.isRLE() && d.opts.UndefinedPixels == UndefinedTransparent:
		return true
	case d.embeddedAlpha:
		return true
	}
	return false
}

type decodeRowFunc func(d *decoder, buf []byte, y int32)

func decodeRowIndexed(d *decoder, buf []byte, y int32) {
	bpp := int(d.info.BitsPerPixel)
	mask := byte(0xFF >> uint(8-bpp))
	row := d.img.Row(y)
	for x := 0; x < d.width; x++ {
		bit := x * bpp
		shift := uint(8 - bpp - bit%8)
		idx := (buf[bit/8] >> shift) & mask
		c := d.paletteColor(int(idx))
		copy(row[x*4:x*4+4], c[:])
	}
}

func decodeRow16(d *decoder, buf []byte, y int32) {
	row := d.img.Row(y)
	for x := 0; x < d.width; x++ {
		v := uint32(binary.LittleEndian.Uint16(buf[x*2:]))
		row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = d.masks.ExtractRGBA(v)
	}
}

func decodeRow24(d *decoder, buf []byte, y int32) {
	row := d.img.Row(y)
	for x := 0; x < d.width; x++ {
		// BGR
		row[x*4+0] = buf[x*3+2]
		row[x*4+1] = buf[x*3+1]
		row[x*4+2] = buf[x*3+0]
		row[x*4+3] = 255
	}
}

func decodeRow32(d *decoder, buf []byte, y int32) {
	row := d.img.Row(y)
	for x := 0; x < d.width; x++ {
		v := binary.LittleEndian.Uint32(buf[x*4:])
		row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = d.masks.ExtractRGBA(v)
	}
}

func decodeRow64(d *decoder, buf []byte, y int32) {
	row := d.img.Row(y)
	for x := 0; x < d.width; x++ {
		row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = ConvertPixel64(buf[x*8:x*8+8], d.opts.Color64)
	}
}

// readBitsUncompressed 读取无压缩或位域像素
// 返回: error 错误信息
func (d *decoder) readBitsUncompressed() error {
	var fn decodeRowFunc
	switch d.info.BitsPerPixel {
	case 1, 2, 4, 8:
		fn = decodeRowIndexed
	case 16:
		fn = decodeRow16
	case 24:
		fn = decodeRow24
	case 32:
		fn = decodeRow32
	case 64:
		fn = decodeRow64
	default:
		return FormatError(fmt.Sprintf("bad bit count %d", d.info.BitsPerPixel))
	}
	buf := make([]byte, rowStride(d.width, int(d.info.BitsPerPixel)))
	for y := 0; y < d.height; y++ {
		if err := d.s.ReadFull(buf); err != nil {
			return err
		}
		fn(d, buf, d.destRow(y))
	}
	return nil
}

// rowStride 计算4字节对齐的行字节数
// 入参: width 宽度, bpp 位深
// 返回: int 字节数
func rowStride(width, bpp int) int {
	return ((width*bpp + 31) / 32) * 4
}

// blackIsZero 调色板第0项是否比第1项暗
// 返回: bool 结果
func (d *decoder) blackIsZero() bool {
	if len(d.palette) < 2 {
		return true
	}
	lum := func(c [4]byte) int { return int(c[0]) + int(c[1]) + int(c[2]) }
	return lum(d.palette[0]) <= lum(d.palette[1])
}

// readBitsHuffman 逐行解码OS/2霍夫曼数据, 数据截断时保留已解码的行
// 返回: error 错误信息
func (d *decoder) readBitsHuffman() error {
	stream := NewBitStream(d.s)
	hd := NewHuffmanDecoder(stream)
	blackIsZero := d.blackIsZero()
	background := byte(0)
	if blackIsZero {
		background = 255
	}
	line := make([]byte, d.width)
	for y := 0; y < d.height; y++ {
		for i := range line {
			line[i] = background
		}
		ok := hd.DecodeLine(line, blackIsZero)
		row := d.img.Row(d.destRow(y))
		for x, v := range line {
			c := d.paletteColor(int(v) / 255)
			copy(row[x*4:x*4+4], c[:])
		}
		if !ok {
			break
		}
	}
	return stream.Err()
}

// isTruncation 是否为数据截断
func isTruncation(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
