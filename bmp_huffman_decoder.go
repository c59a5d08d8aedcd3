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

import "sync"

// ITU-T T.4 修改型霍夫曼编码表, 每项为 {位长, 码字, 游程}
var (
	whiteCodes = [][]int{
		{4, 0x07, 2}, {4, 0x08, 3}, {4, 0x0B, 4}, {4, 0x0C, 5}, {4, 0x0E, 6}, {4, 0x0F, 7},
		{5, 0x12, 128}, {5, 0x13, 8}, {5, 0x14, 9}, {5, 0x1B, 64}, {5, 0x07, 10}, {5, 0x08, 11},
		{6, 0x17, 192}, {6, 0x18, 1664}, {6, 0x2A, 16}, {6, 0x2B, 17}, {6, 0x03, 13}, {6, 0x34, 14},
		{6, 0x35, 15}, {6, 0x07, 1}, {6, 0x08, 12}, {7, 0x13, 26}, {7, 0x17, 21}, {7, 0x18, 28},
		{7, 0x24, 27}, {7, 0x27, 18}, {7, 0x28, 24}, {7, 0x2B, 25}, {7, 0x03, 22}, {7, 0x37, 256},
		{7, 0x04, 23}, {7, 0x08, 20}, {7, 0xC, 19}, {8, 0x12, 33}, {8, 0x13, 34}, {8, 0x14, 35},
		{8, 0x15, 36}, {8, 0x16, 37}, {8, 0x17, 38}, {8, 0x1A, 31}, {8, 0x1B, 32}, {8, 0x02, 29},
		{8, 0x24, 53}, {8, 0x25, 54}, {8, 0x28, 39}, {8, 0x29, 40}, {8, 0x2A, 41}, {8, 0x2B, 42},
		{8, 0x2C, 43}, {8, 0x2D, 44}, {8, 0x03, 30}, {8, 0x32, 61}, {8, 0x33, 62}, {8, 0x34, 63},
		{8, 0x35, 0}, {8, 0x36, 320}, {8, 0x37, 384}, {8, 0x04, 45}, {8, 0x4A, 59}, {8, 0x4B, 60},
		{8, 0x5, 46}, {8, 0x52, 49}, {8, 0x53, 50}, {8, 0x54, 51}, {8, 0x55, 52}, {8, 0x58, 55},
		{8, 0x59, 56}, {8, 0x5A, 57}, {8, 0x5B, 58}, {8, 0x64, 448}, {8, 0x65, 512}, {8, 0x67, 640},
		{8, 0x68, 576}, {8, 0x0A, 47}, {8, 0x0B, 48}, {9, 0x98, 1472}, {9, 0x99, 1536},
		{9, 0x9A, 1600}, {9, 0x9B, 1728}, {9, 0xCC, 704}, {9, 0xCD, 768}, {9, 0xD2, 832},
		{9, 0xD3, 896}, {9, 0xD4, 960}, {9, 0xD5, 1024}, {9, 0xD6, 1088}, {9, 0xD7, 1152},
		{9, 0xD8, 1216}, {9, 0xD9, 1280}, {9, 0xDA, 1344}, {9, 0xDB, 1408},
	}
	blackCodes = [][]int{
		{2, 0x02, 3}, {2, 0x03, 2}, {3, 0x02, 1}, {3, 0x03, 4}, {4, 0x02, 6}, {4, 0x03, 5},
		{5, 0x03, 7}, {6, 0x04, 9}, {6, 0x05, 8}, {7, 0x04, 10}, {7, 0x05, 11}, {7, 0x07, 12},
		{8, 0x04, 13}, {8, 0x07, 14}, {9, 0x18, 15}, {10, 0x17, 16}, {10, 0x18, 17}, {10, 0x37, 0},
		{10, 0x08, 18}, {10, 0x0F, 64}, {11, 0x17, 24}, {11, 0x18, 25}, {11, 0x28, 23},
		{11, 0x37, 22}, {11, 0x67, 19}, {11, 0x68, 20}, {11, 0x6C, 21},
		{12, 0x24, 52}, {12, 0x27, 55}, {12, 0x28, 56}, {12, 0x2B, 59}, {12, 0x2C, 60},
		{12, 0x33, 320}, {12, 0x34, 384}, {12, 0x35, 448}, {12, 0x37, 53}, {12, 0x38, 54},
		{12, 0x52, 50}, {12, 0x53, 51}, {12, 0x54, 44}, {12, 0x55, 45}, {12, 0x56, 46},
		{12, 0x57, 47}, {12, 0x58, 57}, {12, 0x59, 58}, {12, 0x5A, 61}, {12, 0x5B, 256},
		{12, 0x64, 48}, {12, 0x65, 49}, {12, 0x66, 62}, {12, 0x67, 63}, {12, 0x68, 30},
		{12, 0x69, 31}, {12, 0x6A, 32}, {12, 0x6B, 33}, {12, 0x6C, 40}, {12, 0x6D, 41},
		{12, 0xC8, 128}, {12, 0xC9, 192}, {12, 0xCA, 26}, {12, 0xCB, 27}, {12, 0xCC, 28},
		{12, 0xCD, 29}, {12, 0xD2, 34}, {12, 0xD3, 35}, {12, 0xD4, 36}, {12, 0xD5, 37},
		{12, 0xD6, 38}, {12, 0xD7, 39}, {12, 0xDA, 42}, {12, 0xDB, 43}, {13, 0x4A, 640},
		{13, 0x4B, 704}, {13, 0x4C, 768}, {13, 0x4D, 832}, {13, 0x52, 1280}, {13, 0x53, 1344},
		{13, 0x54, 1408}, {13, 0x55, 1472}, {13, 0x5A, 1536}, {13, 0x5B, 1600}, {13, 0x64, 1664},
		{13, 0x65, 1728}, {13, 0x6C, 512}, {13, 0x6D, 576}, {13, 0x72, 896}, {13, 0x73, 960},
		{13, 0x74, 1024}, {13, 0x75, 1088}, {13, 0x76, 1152}, {13, 0x77, 1216},
	}
	// 1792 以上的扩展补充码黑白共用
	extendedMakeupCodes = [][]int{
		{11, 0x08, 1792}, {11, 0x0C, 1856}, {11, 0x0D, 1920},
		{12, 0x12, 1984}, {12, 0x13, 2048}, {12, 0x14, 2112}, {12, 0x15, 2176}, {12, 0x16, 2240},
		{12, 0x17, 2304}, {12, 0x1C, 2368}, {12, 0x1D, 2432}, {12, 0x1E, 2496}, {12, 0x1F, 2560},
	}
)

const (
	eolZeroBits = 11
	makeupBase  = 64
)

// huffmanNode 扁平数组中的树节点, 子节点索引 -1 表示不存在
type huffmanNode struct {
	left     int32
	right    int32
	leaf     bool
	value    int32
	isMakeup bool
}

// huffmanTree 规范霍夫曼树
type huffmanTree struct {
	nodes []huffmanNode
}

var (
	huffmanOnce sync.Once
	whiteTree   *huffmanTree
	blackTree   *huffmanTree
)

// huffmanTrees 获取黑白游程树, 首次使用时构建
// 返回: white 白树, black 黑树
func huffmanTrees() (white, black *huffmanTree) {
	huffmanOnce.Do(func() {
		whiteTree = newHuffmanTree(whiteCodes, extendedMakeupCodes)
		blackTree = newHuffmanTree(blackCodes, extendedMakeupCodes)
	})
	return whiteTree, blackTree
}

// newHuffmanTree 从编码表构建树
// 入参: tables 编码表
// 返回: *huffmanTree 树
func newHuffmanTree(tables ...[][]int) *huffmanTree {
	t := &huffmanTree{nodes: []huffmanNode{{left: -1, right: -1}}}
	for _, codes := range tables {
		for _, c := range codes {
			t.insert(c[0], c[1], c[2])
		}
	}
	return t
}

// insert 插入一个码字
// 入参: bitLength 位长, codeWord 码字, run 游程
func (t *huffmanTree) insert(bitLength, codeWord, run int) {
	idx := int32(0)
	for i := bitLength - 1; i >= 0; i-- {
		bit := (codeWord >> uint(i)) & 1
		next := t.nodes[idx].left
		if bit == 1 {
			next = t.nodes[idx].right
		}
		if next < 0 {
			next = int32(len(t.nodes))
			t.nodes = append(t.nodes, huffmanNode{left: -1, right: -1})
			if bit == 1 {
				t.nodes[idx].right = next
			} else {
				t.nodes[idx].left = next
			}
		}
		idx = next
	}
	t.nodes[idx].leaf = true
	t.nodes[idx].value = int32(run)
	t.nodes[idx].isMakeup = run >= makeupBase
}

// runStatus 游程解码结果
type runStatus int

const (
	runOK runStatus = iota
	runTruncated
	runInvalid
)

// HuffmanDecoder OS/2 1位霍夫曼(G3 一维)扫描线解码器
type HuffmanDecoder struct {
	stream *BitStream
	white  *huffmanTree
	black  *huffmanTree
}

// NewHuffmanDecoder 创建新的霍夫曼解码器
// 入参: stream 位流
// 返回: *HuffmanDecoder 解码器对象
func NewHuffmanDecoder(stream *BitStream) *HuffmanDecoder {
	white, black := huffmanTrees()
	return &HuffmanDecoder{stream: stream, white: white, black: black}
}

// DecodeLine 解码一条扫描线, 白色游程为0, 黑色为255, blackIsZero 时反转
// 入参: row 目标行(长度即宽度), blackIsZero 黑色是否为0
// 返回: bool 数据在填满该行之前耗尽时为 false
func (h *HuffmanDecoder) DecodeLine(row []byte, blackIsZero bool) bool {
	width := len(row)
	whiteVal, blackVal := byte(0), byte(255)
	if blackIsZero {
		whiteVal, blackVal = 255, 0
	}
	x := 0
	isWhite := true
	for x < width {
		if h.readEOL() {
			if x == 0 {
				continue
			}
			return true
		}
		tree, val := h.white, whiteVal
		if !isWhite {
			tree, val = h.black, blackVal
		}
		run, zeros, status := h.decodeRun(tree)
		switch status {
		case runTruncated:
			return false
		case runInvalid:
			return h.skipToEOL(zeros)
		}
		end := x + run
		if end > width {
			end = width
		}
		for ; x < end; x++ {
			row[x] = val
		}
		isWhite = !isWhite
	}
	return true
}

// readEOL 检测并跳过 EOL(至少11个0后跟1)
// 返回: bool 是否为 EOL
func (h *HuffmanDecoder) readEOL() bool {
	v, avail := h.stream.PeekNBits(eolZeroBits)
	if avail < eolZeroBits || v != 0 {
		return false
	}
	h.stream.SkipBits(eolZeroBits)
	for {
		bit, ok := h.stream.Read1Bit()
		if !ok || bit == 1 {
			return true
		}
	}
}

// decodeRun 解码一个完整游程, 累加补充码直到终止码
// 入参: tree 当前颜色的树
// 返回: int 游程长度, int 已读入的末尾连续0位数, runStatus 状态
func (h *HuffmanDecoder) decodeRun(tree *huffmanTree) (int, int, runStatus) {
	total := 0
	for {
		idx := int32(0)
		zeros := 0
		for {
			bit, ok := h.stream.Read1Bit()
			if !ok {
				return total, zeros, runTruncated
			}
			next := tree.nodes[idx].left
			if bit == 1 {
				next = tree.nodes[idx].right
				zeros = 0
			} else {
				zeros++
			}
			if next < 0 {
				return total, zeros, runInvalid
			}
			idx = next
			if tree.nodes[idx].leaf {
				break
			}
		}
		node := tree.nodes[idx]
		total += int(node.value)
		if !node.isMakeup {
			return total, 0, runOK
		}
	}
}

// skipToEOL 向前扫描到下一个 EOL 并放弃当前行
// 入参: zeros 已读入的末尾连续0位数
// 返回: bool 数据耗尽时为 false
func (h *HuffmanDecoder) skipToEOL(zeros int) bool {
	for {
		bit, ok := h.stream.Read1Bit()
		if !ok {
			return false
		}
		if bit == 0 {
			zeros++
			continue
		}
		if zeros >= eolZeroBits {
			return true
		}
		zeros = 0
	}
}
