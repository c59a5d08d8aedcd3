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

// decodeIcon 解码OS/2图标或指针
// 掩码位图高度为图像的两倍, 上半为XOR图像, 下半为AND掩码
// 入参: fh 图标文件头
// 返回: *Bitmap 结果, error 错误信息
func (d *decoder) decodeIcon(fh FileHeader) (*Bitmap, error) {
	if !d.s.canSeek() {
		return nil, ErrNotSupported
	}
	start := d.s.Position() - FileHeaderSize
	if err := d.s.SeekTo(start); err != nil {
		return nil, err
	}
	mask := newDecoder(d.s, d.opts)
	mfh, err := mask.readFileHeader()
	if err != nil {
		return nil, err
	}
	if err := mask.decodeBitmap(mfh); err != nil {
		return nil, err
	}
	if mask.height%2 != 0 {
		return nil, FormatError("icon mask height is odd")
	}
	w, h := int32(mask.width), int32(mask.height/2)
	xor := mask.img.SubImage(0, 0, w, h)
	alpha := andMaskAlpha(mask.img.SubImage(0, h, w, h))

	out := mask
	if fh.Type.IsColorIcon() {
		if out, err = mask.readColorImage(); err != nil {
			return nil, err
		}
		applyAlphaMask(out.img, alpha, w, h)
	} else {
		mask.img = createMonochromeImage(xor, alpha)
		mask.width, mask.height = int(w), int(h)
	}
	out.hasAlpha = true
	b := out.result()
	b.FileHeader = fh
	return b, nil
}

// readColorImage 读取彩色图标中紧随掩码的第二个位图
// 依次尝试掩码调色板之后与掩码像素之后两个位置
// 返回: *decoder 彩色图像的解码状态, error 错误信息
func (d *decoder) readColorImage() (*decoder, error) {
	var lastErr error
	for _, pos := range []int64{d.headerEnd, d.s.Position()} {
		if err := d.s.SeekTo(pos); err != nil {
			return nil, err
		}
		color := newDecoder(d.s, d.opts)
		fh, err := color.readFileHeader()
		if err != nil {
			lastErr = err
			continue
		}
		if fh.Type != MarkerBitmap && !fh.Type.IsColorIcon() {
			lastErr = FormatError("missing color icon bitmap")
			continue
		}
		if err := color.decodeBitmap(fh); err != nil {
			return nil, err
		}
		return color, nil
	}
	return nil, lastErr
}

// andMaskAlpha 由AND掩码生成透明度, 掩码置位处透明
// 入参: and 掩码图像
// 返回: []byte 每像素透明度
func andMaskAlpha(and *Image) []byte {
	alpha := make([]byte, int(and.Width())*int(and.Height()))
	for i := range alpha {
		alpha[i] = 255 - and.data[i*4]
	}
	return alpha
}

// createMonochromeImage 由XOR图像和透明度合成单色图标
// 入参: xor 图像, alpha 透明度
// 返回: *Image 结果图像
func createMonochromeImage(xor *Image, alpha []byte) *Image {
	out := NewImage(xor.Width(), xor.Height())
	for i := range alpha {
		v := xor.data[i*4]
		copy(out.data[i*4:i*4+4], []byte{v, v, v, alpha[i]})
	}
	return out
}

// applyAlphaMask 将透明度写入图像, 尺寸不一致时不做处理
// 入参: img 图像, alpha 透明度, w 掩码宽度, h 掩码高度
func applyAlphaMask(img *Image, alpha []byte, w, h int32) {
	if img == nil || img.Width() != w || img.Height() != h {
		return
	}
	for i, a := range alpha {
		img.data[i*4+3] = a
	}
}
