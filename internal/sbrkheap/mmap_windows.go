// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2024 The dsalloc Authors.

package sbrkheap

import (
	"errors"
	"os"
	"reflect"
	"sync"
	"syscall"
	"unsafe"
)

var handleMap = struct {
	sync.Mutex
	m map[uintptr]syscall.Handle
}{m: map[uintptr]syscall.Handle{}}

// mmapReserve reserves size bytes via CreateFileMapping/MapViewOfFile, the
// Windows two-step equivalent of an anonymous mmap.
func mmapReserve(size int) ([]byte, error) {
	flProtect := uint32(syscall.PAGE_READWRITE)
	dwDesiredAccess := uint32(syscall.FILE_MAP_WRITE)

	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.InvalidHandle, nil, flProtect, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", errno)
	}

	addr, errno := syscall.MapViewOfFile(h, dwDesiredAccess, 0, 0, uintptr(size))
	if addr == 0 {
		return nil, os.NewSyscallError("MapViewOfFile", errno)
	}

	handleMap.Lock()
	handleMap.m[addr] = h
	handleMap.Unlock()

	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = size
	sh.Cap = size
	return b, nil
}

func munmap(addr unsafe.Pointer, size int) error {
	err := syscall.UnmapViewOfFile(uintptr(addr))
	if err != nil {
		return err
	}

	handleMap.Lock()
	handle, ok := handleMap.m[uintptr(addr)]
	delete(handleMap.m, uintptr(addr))
	handleMap.Unlock()
	if !ok {
		return errors.New("sbrkheap: unknown base address")
	}

	e := syscall.CloseHandle(handle)
	return os.NewSyscallError("CloseHandle", e)
}
