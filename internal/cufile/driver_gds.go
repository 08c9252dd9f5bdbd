//go:build linux
// +build linux

package cufile

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

const (
	libName     = "libcufile.so"
	runtimeName = "libcudart.so"

	opSuccess      = 0
	handleTypeFD   = 1 // CU_FILE_HANDLE_TYPE_OPAQUE_FD
	runtimeSuccess = 0 // cudaSuccess
)

// cufileStatus mirrors CUfileError_t: the driver's own error code plus the
// CUDA result it wraps.
type cufileStatus struct {
	Err int32
	Cu  int32
}

// fileDescr mirrors CUfileDescr_t for opaque-fd registration. The handle
// union is 8 bytes; only the fd member is populated here.
type fileDescr struct {
	handleType uint32
	_          uint32
	fd         uint64
	fsOps      uintptr
}

type gdsDriver struct {
	lib uintptr

	driverOpen       func() cufileStatus
	driverClose      func() cufileStatus
	handleRegister   func(h unsafe.Pointer, descr unsafe.Pointer) cufileStatus
	handleDeregister func(h uintptr)
	read             func(h uintptr, buf unsafe.Pointer, size uintptr, fileOff int64, bufOff int64) int64
	write            func(h uintptr, buf unsafe.Pointer, size uintptr, fileOff int64, bufOff int64) int64
}

func bindSymbol(fptr interface{}, lib uintptr, name string) error {
	addr, err := purego.Dlsym(lib, name)
	if err != nil || addr == 0 {
		return fmt.Errorf("%w: could not find %s symbol", ErrLoad, name)
	}
	purego.RegisterFunc(fptr, addr)
	return nil
}

// loadGDSDriver dlopens the vendor library and resolves every required entry
// point. Any missing piece fails the whole load; nothing is deferred to
// first use.
func loadGDSDriver() (Driver, DeviceBinder, error) {
	lib, err := purego.Dlopen(libName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	d := &gdsDriver{lib: lib}
	for _, sym := range []struct {
		fptr interface{}
		name string
	}{
		{&d.driverOpen, "cuFileDriverOpen"},
		{&d.driverClose, "cuFileDriverClose"},
		{&d.handleRegister, "cuFileHandleRegister"},
		{&d.handleDeregister, "cuFileHandleDeregister"},
		{&d.read, "cuFileRead"},
		{&d.write, "cuFileWrite"},
	} {
		if err := bindSymbol(sym.fptr, lib, sym.name); err != nil {
			return nil, nil, err
		}
	}
	binder, err := loadCudaBinder()
	if err != nil {
		return nil, nil, err
	}
	return d, binder, nil
}

func (d *gdsDriver) DirectIO() bool { return true }

func (d *gdsDriver) Open() error {
	if st := d.driverOpen(); st.Err != opSuccess {
		return fmt.Errorf("%w: driver open returned %d", ErrDriverInit, st.Err)
	}
	return nil
}

func (d *gdsDriver) Close() error {
	if st := d.driverClose(); st.Err != opSuccess {
		return fmt.Errorf("cufile: driver close returned %d", st.Err)
	}
	return nil
}

func (d *gdsDriver) Register(fd int) (Handle, error) {
	descr := fileDescr{
		handleType: handleTypeFD,
		fd:         uint64(fd),
	}
	var h uintptr
	st := d.handleRegister(unsafe.Pointer(&h), unsafe.Pointer(&descr))
	if st.Err != opSuccess {
		return 0, fmt.Errorf("%w: driver returned %d for fd %d", ErrRegister, st.Err, fd)
	}
	return Handle(h), nil
}

func (d *gdsDriver) Deregister(h Handle) {
	d.handleDeregister(uintptr(h))
}

func (d *gdsDriver) ReadAt(h Handle, p []byte, off int64) (int64, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := d.read(uintptr(h), unsafe.Pointer(&p[0]), uintptr(len(p)), off, 0)
	if n < 0 {
		return 0, fmt.Errorf("%w: read at offset %d returned %d", ErrSliceIO, off, n)
	}
	return n, nil
}

func (d *gdsDriver) WriteAt(h Handle, p []byte, off int64) (int64, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := d.write(uintptr(h), unsafe.Pointer(&p[0]), uintptr(len(p)), off, 0)
	if n < 0 {
		return 0, fmt.Errorf("%w: write at offset %d returned %d", ErrSliceIO, off, n)
	}
	return n, nil
}

// cudaBinder binds accelerator devices through the CUDA runtime, resolved
// from the same process the storage driver lives in.
type cudaBinder struct {
	getDevice func(dev unsafe.Pointer) int32
	setDevice func(dev int32) int32
}

func loadCudaBinder() (DeviceBinder, error) {
	lib, err := purego.Dlopen(runtimeName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	b := &cudaBinder{}
	if err := bindSymbol(&b.getDevice, lib, "cudaGetDevice"); err != nil {
		return nil, err
	}
	if err := bindSymbol(&b.setDevice, lib, "cudaSetDevice"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *cudaBinder) Current() (int, error) {
	var dev int32
	if rc := b.getDevice(unsafe.Pointer(&dev)); rc != runtimeSuccess {
		return 0, fmt.Errorf("cufile: cudaGetDevice returned %d", rc)
	}
	return int(dev), nil
}

func (b *cudaBinder) Bind(device int) error {
	if rc := b.setDevice(int32(device)); rc != runtimeSuccess {
		return fmt.Errorf("cufile: cudaSetDevice(%d) returned %d", device, rc)
	}
	return nil
}
