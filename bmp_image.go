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

// Image RGBA8 像素缓冲, 行优先, 自顶向下, 非预乘透明度
type Image struct {
	width  int32
	height int32
	stride int32
	data   []byte
}

// NewImage 创建新图像
// 入参: width 宽度, height 高度
// 返回: *Image 图像对象, 尺寸无效时为 nil
func NewImage(width, height int32) *Image {
	if width <= 0 || height <= 0 {
		return nil
	}
	if int64(width)*int64(height) > MaxPixelCount {
		return nil
	}
	stride := width * 4
	return &Image{
		width:  width,
		height: height,
		stride: stride,
		data:   make([]byte, int(stride)*int(height)),
	}
}

// Width 获取宽度
// 返回: int32 宽度
func (i *Image) Width() int32 {
	return i.width
}

// Height 获取高度
// 返回: int32 高度
func (i *Image) Height() int32 {
	return i.height
}

// Stride 获取跨度
// 返回: int32 跨度
func (i *Image) Stride() int32 {
	return i.stride
}

// Data 获取数据
// 返回: []byte 数据切片
func (i *Image) Data() []byte {
	return i.data
}

// Row 获取一行像素
// 入参: y 行号
// 返回: []byte 行数据
func (i *Image) Row(y int32) []byte {
	start := y * i.stride
	return i.data[start : start+i.stride]
}

// GetPixel 获取像素值
// 入参: x 轴坐标, y 轴坐标
// 返回: [4]byte RGBA, 越界时为零值
func (i *Image) GetPixel(x, y int32) [4]byte {
	var p [4]byte
	if x < 0 || x >= i.width || y < 0 || y >= i.height {
		return p
	}
	off := y*i.stride + x*4
	copy(p[:], i.data[off:off+4])
	return p
}

// SetPixel 设置像素值
// 入参: x 轴坐标, y 轴坐标, p RGBA
func (i *Image) SetPixel(x, y int32, p [4]byte) {
	if x < 0 || x >= i.width || y < 0 || y >= i.height {
		return
	}
	off := y*i.stride + x*4
	copy(i.data[off:off+4], p[:])
}

// Fill 填充图像
// 入参: p 填充颜色
func (i *Image) Fill(p [4]byte) {
	for off := 0; off < len(i.data); off += 4 {
		copy(i.data[off:off+4], p[:])
	}
}

// SubImage 获取子图像
// 入参: x 轴坐标, y 轴坐标, w 宽度, h 高度
// 返回: *Image 子图像对象
func (i *Image) SubImage(x, y, w, h int32) *Image {
	sub := NewImage(w, h)
	if sub == nil {
		return nil
	}
	for r := int32(0); r < h; r++ {
		for c := int32(0); c < w; c++ {
			sub.SetPixel(c, r, i.GetPixel(x+c, y+r))
		}
	}
	return sub
}
