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

// Palette 编码用调色板, 按光栅顺序收集不重复的颜色
type Palette struct {
	Colors [][4]byte
	index  map[uint32]int
}

// rgbKey 颜色键
func rgbKey(r, g, b byte) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// BuildPalette 从RGBA像素中构建调色板, 超过容量的颜色被丢弃
// 入参: pix RGBA像素, bpp 位深
// 返回: *Palette 调色板
func BuildPalette(pix []byte, bpp int) *Palette {
	capacity := 1 << uint(bpp)
	p := &Palette{index: make(map[uint32]int, capacity)}
	for i := 0; i+3 < len(pix) && len(p.Colors) < capacity; i += 4 {
		k := rgbKey(pix[i], pix[i+1], pix[i+2])
		if _, ok := p.index[k]; ok {
			continue
		}
		p.index[k] = len(p.Colors)
		p.Colors = append(p.Colors, [4]byte{pix[i], pix[i+1], pix[i+2], 255})
	}
	return p
}

// Index 查找颜色索引, 不在调色板中时取最接近的颜色
// 入参: r 红, g 绿, b 蓝
// 返回: int 索引
func (p *Palette) Index(r, g, b byte) int {
	if i, ok := p.index[rgbKey(r, g, b)]; ok {
		return i
	}
	return p.FindClosestColor(r, g, b)
}

// FindClosestColor 按RGB欧氏距离查找最接近的颜色
// 入参: r 红, g 绿, b 蓝
// 返回: int 索引
func (p *Palette) FindClosestColor(r, g, b byte) int {
	best, bestDist := 0, -1
	for i, c := range p.Colors {
		dr := int(c[0]) - int(r)
		dg := int(c[1]) - int(g)
		db := int(c[2]) - int(b)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
			if dist == 0 {
				break
			}
		}
	}
	return best
}
