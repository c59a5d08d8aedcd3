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
	"errors"
	"io"
)

const streamBufferSize = 8 * 1024

// streamReader 带缓冲的读取器, 位置相对于创建时的起点
type streamReader struct {
	r        io.Reader
	seeker   io.Seeker
	origin   int64
	buf      []byte
	bufStart int64
	pos      int
	end      int
	readErr  error
}

// newStreamReader 创建读取器
// 入参: r 读取器
// 返回: *streamReader 读取器
func newStreamReader(r io.Reader) *streamReader {
	s := &streamReader{r: r, buf: make([]byte, streamBufferSize)}
	if seeker, ok := r.(io.Seeker); ok {
		if origin, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			s.seeker = seeker
			s.origin = origin
		}
	}
	return s
}

// Position 获取当前逻辑位置
// 返回: int64 位置
func (s *streamReader) Position() int64 {
	return s.bufStart + int64(s.pos)
}

// canSeek 是否支持定位
// 返回: bool 是否支持
func (s *streamReader) canSeek() bool {
	return s.seeker != nil
}

// fill 读取下一块数据
// 返回: error 错误信息
func (s *streamReader) fill() error {
	if s.readErr != nil {
		return s.readErr
	}
	s.bufStart += int64(s.end)
	s.pos = 0
	s.end = 0
	for s.end == 0 {
		n, err := s.r.Read(s.buf)
		s.end = n
		if err != nil {
			s.readErr = err
			if n == 0 {
				return err
			}
		}
	}
	return nil
}

// Read 实现 io.Reader
func (s *streamReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos == s.end {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.buf[s.pos:s.end])
	s.pos += n
	return n, nil
}

// ReadByte 实现 io.ByteReader
func (s *streamReader) ReadByte() (byte, error) {
	if s.pos == s.end {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// ReadFull 读满缓冲区
// 入参: p 目标缓冲区
// 返回: error 错误信息, 数据不足时为 io.ErrUnexpectedEOF
func (s *streamReader) ReadFull(p []byte) error {
	_, err := io.ReadFull(s, p)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// SeekTo 定位到逻辑位置
// 入参: offset 相对起点的位置
// 返回: error 错误信息
func (s *streamReader) SeekTo(offset int64) error {
	if offset == s.Position() {
		return nil
	}
	if s.seeker == nil {
		return ErrNotSupported
	}
	if offset < 0 {
		return FormatError("negative seek offset")
	}
	if offset >= s.bufStart && offset <= s.bufStart+int64(s.end) {
		s.pos = int(offset - s.bufStart)
		return nil
	}
	if _, err := s.seeker.Seek(s.origin+offset, io.SeekStart); err != nil {
		return err
	}
	s.reset(offset)
	return nil
}

// reset 丢弃缓冲数据
// 入参: offset 新的逻辑位置
func (s *streamReader) reset(offset int64) {
	s.bufStart = offset
	s.pos = 0
	s.end = 0
	s.readErr = nil
}
