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

// rleState 游程解码状态, y 为文件中的行号
type rleState struct {
	d   *decoder
	x   int
	y   int
	buf [768]byte
}

// put 写入一个像素, 超出图像范围的像素丢弃
// 入参: c 颜色
func (st *rleState) put(c [4]byte) {
	if st.x < st.d.width && st.y < st.d.height {
		st.d.img.SetPixel(int32(st.x), st.d.destRow(st.y), c)
	}
	st.x++
}

// read 读取 n 字节
// 入参: n 字节数
// 返回: []byte 数据, error 错误信息
func (st *rleState) read(n int) ([]byte, error) {
	b := st.buf[:n]
	if err := st.d.s.ReadFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// undefinedColor 未被游程覆盖的像素颜色
// 返回: [4]byte RGBA
func (d *decoder) undefinedColor() [4]byte {
	if d.info.Compression == CompressionRLE24 {
		return [4]byte{0, 0, 0, 255}
	}
	return d.paletteColor(0)
}

// readBitsRLE 解码RLE4/RLE8/RLE24, 数据截断时保留已解码的像素
// 返回: error 错误信息
func (d *decoder) readBitsRLE() error {
	if d.opts.UndefinedPixels == UndefinedLeave {
		d.img.Fill(d.undefinedColor())
	}
	st := &rleState{d: d}
	err := st.run()
	if isTruncation(err) {
		return nil
	}
	return err
}

func (st *rleState) run() error {
	comp := st.d.info.Compression
	for st.y < st.d.height {
		b, err := st.read(2)
		if err != nil {
			return err
		}
		n, v := int(b[0]), b[1]
		if n > 0 {
			if err := st.encoded(comp, n, v); err != nil {
				return err
			}
			continue
		}
		switch v {
		case 0:
			st.x = 0
			st.y++
		case 1:
			return nil
		case 2:
			delta, err := st.read(2)
			if err != nil {
				return err
			}
			st.x += int(delta[0])
			st.y += int(delta[1])
		default:
			if err := st.absolute(comp, int(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// encoded 处理重复游程
// 入参: comp 压缩类型, n 像素数, v 第二个字节
// 返回: error 错误信息
func (st *rleState) encoded(comp Compression, n int, v byte) error {
	switch comp {
	case CompressionRLE8:
		c := st.d.paletteColor(int(v))
		for i := 0; i < n; i++ {
			st.put(c)
		}
	case CompressionRLE4:
		hi := st.d.paletteColor(int(v >> 4))
		lo := st.d.paletteColor(int(v & 0x0F))
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				st.put(hi)
			} else {
				st.put(lo)
			}
		}
	case CompressionRLE24:
		gr, err := st.read(2)
		if err != nil {
			return err
		}
		c := [4]byte{gr[1], gr[0], v, 255}
		for i := 0; i < n; i++ {
			st.put(c)
		}
	}
	return nil
}

// absolute 处理绝对模式, 数据按2字节对齐
// 入参: comp 压缩类型, n 像素数
// 返回: error 错误信息
func (st *rleState) absolute(comp Compression, n int) error {
	var size int
	switch comp {
	case CompressionRLE8:
		size = n
	case CompressionRLE4:
		size = (n + 1) / 2
	case CompressionRLE24:
		size = n * 3
	}
	b, err := st.read(size + size%2)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		switch comp {
		case CompressionRLE8:
			st.put(st.d.paletteColor(int(b[i])))
		case CompressionRLE4:
			idx := b[i/2] >> 4
			if i%2 == 1 {
				idx = b[i/2] & 0x0F
			}
			st.put(st.d.paletteColor(int(idx)))
		case CompressionRLE24:
			st.put([4]byte{b[i*3+2], b[i*3+1], b[i*3], 255})
		}
	}
	return nil
}
