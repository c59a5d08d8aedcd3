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
	"bytes"
	"io"
	"testing"
)

func TestStreamReaderSeek(t *testing.T) {
	data := make([]byte, 3*streamBufferSize)
	for i := range data {
		data[i] = byte(i)
	}
	s := newStreamReader(bytes.NewReader(data))
	p := make([]byte, 10)
	if err := s.ReadFull(p); err != nil {
		t.Fatal(err)
	}
	for _, off := range []int64{5, 2 * streamBufferSize, 100, int64(len(data) - 1)} {
		if err := s.SeekTo(off); err != nil {
			t.Fatalf("SeekTo(%d): %v", off, err)
		}
		c, err := s.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte at %d: %v", off, err)
		}
		if c != byte(off) {
			t.Errorf("byte at %d = %d", off, c)
		}
		if s.Position() != off+1 {
			t.Errorf("position = %d, want %d", s.Position(), off+1)
		}
	}
	if _, err := s.ReadByte(); err != io.EOF {
		t.Errorf("read past end err = %v, want io.EOF", err)
	}
	if err := s.SeekTo(-1); !isFormatError(err) {
		t.Errorf("negative seek err = %v", err)
	}
}

func TestStreamReaderNonSeekable(t *testing.T) {
	s := newStreamReader(onlyReader{bytes.NewReader(make([]byte, 32))})
	if s.canSeek() {
		t.Fatal("canSeek = true")
	}
	if err := s.SeekTo(0); err != nil {
		t.Errorf("seek to current position: %v", err)
	}
	if err := s.ReadFull(make([]byte, 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.SeekTo(8); err != ErrNotSupported {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
	if err := s.ReadFull(make([]byte, 40)); err != io.ErrUnexpectedEOF {
		t.Errorf("short read err = %v", err)
	}
}
