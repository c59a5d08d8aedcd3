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

import "io"

// BitStream 大端位流, 32位缓冲按字节补充
type BitStream struct {
	r             io.ByteReader
	buffer        uint32
	bitsAvailable uint32
	eof           bool
	err           error
}

// NewBitStream 创建位流
// 入参: r 字节读取器
// 返回: *BitStream 位流对象
func NewBitStream(r io.ByteReader) *BitStream {
	return &BitStream{r: r}
}

// fill 剩余不超过24位时逐字节补充
func (b *BitStream) fill() {
	for b.bitsAvailable <= 24 && !b.eof {
		c, err := b.r.ReadByte()
		if err != nil {
			b.eof = true
			if err != io.EOF {
				b.err = err
			}
			return
		}
		b.buffer |= uint32(c) << (24 - b.bitsAvailable)
		b.bitsAvailable += 8
	}
}

// Read1Bit 读取1位
// 返回: uint32 结果, bool 是否成功
func (b *BitStream) Read1Bit() (uint32, bool) {
	b.fill()
	if b.bitsAvailable == 0 {
		return 0, false
	}
	bit := b.buffer >> 31
	b.buffer <<= 1
	b.bitsAvailable--
	return bit, true
}

// PeekNBits 查看接下来的 n 位(n <= 24), 不足时高位补零
// 入参: n 位数
// 返回: uint32 结果, uint32 实际可用位数
func (b *BitStream) PeekNBits(n uint32) (uint32, uint32) {
	b.fill()
	avail := n
	if b.bitsAvailable < n {
		avail = b.bitsAvailable
	}
	return b.buffer >> (32 - n), avail
}

// SkipBits 跳过 n 位
// 入参: n 位数
func (b *BitStream) SkipBits(n uint32) {
	b.fill()
	if n > b.bitsAvailable {
		n = b.bitsAvailable
	}
	if n == 32 {
		b.buffer = 0
	} else {
		b.buffer <<= n
	}
	b.bitsAvailable -= n
}

// Err 底层读取错误, EOF 不计入
// 返回: error 错误信息
func (b *BitStream) Err() error {
	return b.err
}
