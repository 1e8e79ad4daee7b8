package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat wraps a gocv.Mat with validity tracking so that a released Mat is never touched again.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
	tag     string
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	return NewMatWithTag(rows, cols, matType, "")
}

func NewMatWithTag(rows, cols int, matType gocv.MatType, tag string) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat, tag), nil
}

// NewMatFromScalar creates a Mat with every pixel set to s.
func NewMatFromScalar(s gocv.Scalar, rows, cols int, matType gocv.MatType, tag string) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSizeFromScalar(s, rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create %s Mat with size %dx%d", tag, cols, rows)
	}

	return wrap(mat, tag), nil
}

// Zeros creates a Mat with every byte cleared.
func Zeros(rows, cols int, matType gocv.MatType, tag string) (*Mat, error) {
	return NewMatFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, matType, tag)
}

// NewMatFromBytes copies raw pixel bytes into a new Mat.
func NewMatFromBytes(rows, cols int, matType gocv.MatType, data []byte) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, matType, data)
	if err != nil {
		return nil, fmt.Errorf("Mat from bytes failed: %w", err)
	}
	defer mat.Close()

	return NewMatFromMat(mat)
}

func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	return NewMatFromMatWithTag(srcMat, "")
}

// NewMatFromMatWithTag clones srcMat; the caller keeps ownership of srcMat.
func NewMatFromMatWithTag(srcMat gocv.Mat, tag string) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	if srcMat.Rows() <= 0 || srcMat.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", srcMat.Cols(), srcMat.Rows())
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(clonedMat, tag), nil
}

// Adopt takes ownership of mat without cloning it.
func Adopt(mat gocv.Mat, tag string) (*Mat, error) {
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("cannot adopt empty Mat %q", tag)
	}
	return wrap(mat, tag), nil
}

func wrap(mat gocv.Mat, tag string) *Mat {
	safeMat := &Mat{
		mat:     mat,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
		tag:     tag,
	}

	// Set finalizer for cleanup if Close() is not called
	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

func (sm *Mat) Tag() string {
	return sm.tag
}

func (sm *Mat) Clone() (*Mat, error) {
	return sm.CloneWithTag(sm.tag + "_clone")
}

func (sm *Mat) CloneWithTag(tag string) (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}

	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}

	return NewMatFromMatWithTag(sm.mat, tag)
}

func (sm *Mat) GetUCharAt(row, col int) (uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0, fmt.Errorf("Mat is invalid")
	}

	if err := ValidateCoordinates(row, col, sm.mat.Rows(), sm.mat.Cols(), "GetUCharAt"); err != nil {
		return 0, err
	}

	return sm.mat.GetUCharAt(row, col), nil
}

// GetPixel returns the channel values at (row, col) in the Mat's native order (BGR for colour).
func (sm *Mat) GetPixel(row, col int) ([]uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("Mat is invalid")
	}

	if err := ValidateCoordinates(row, col, sm.mat.Rows(), sm.mat.Cols(), "GetPixel"); err != nil {
		return nil, err
	}

	if sm.mat.Channels() == 1 {
		return []uint8{sm.mat.GetUCharAt(row, col)}, nil
	}

	vec := sm.mat.GetVecbAt(row, col)
	out := make([]uint8, len(vec))
	copy(out, vec)
	return out, nil
}

func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

// GetMatPtr exposes the wrapped Mat as an output argument for gocv calls writing into it.
func (sm *Mat) GetMatPtr() *gocv.Mat {
	return &sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	if sm == nil {
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		sm.mat.Close()

		// Clear finalizer since we're cleaning up manually
		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is called by Go's garbage collector as last resort cleanup
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}

// CloseAll releases every non-nil Mat in mats.
func CloseAll(mats []*Mat) {
	for _, m := range mats {
		m.Close()
	}
}
