package pointcloud

// AttributeBuffer is a flat per-element float buffer, laid out the way a GPU
// vertex attribute is: element i occupies Data[i*ItemSize : (i+1)*ItemSize].
//
// Writers mark the buffer dirty after mutating it; the owner calls Flush once
// at the end of a tick to hand the new contents to the renderer.
type AttributeBuffer struct {
	Data     []float32
	ItemSize int

	dirty   bool
	version uint64
}

// NewAttributeBuffer allocates a zeroed buffer holding count elements of
// itemSize floats each.
func NewAttributeBuffer(count, itemSize int) *AttributeBuffer {
	if itemSize <= 0 {
		itemSize = 1
	}
	return &AttributeBuffer{
		Data:     make([]float32, count*itemSize),
		ItemSize: itemSize,
	}
}

// Count returns the number of elements.
func (b *AttributeBuffer) Count() int {
	if b == nil || b.ItemSize == 0 {
		return 0
	}
	return len(b.Data) / b.ItemSize
}

// X returns the first component of element i.
func (b *AttributeBuffer) X(i int) float64 {
	return float64(b.Data[i*b.ItemSize])
}

// XYZ returns the first three components of element i. ItemSize must be >= 3.
func (b *AttributeBuffer) XYZ(i int) (x, y, z float64) {
	j := i * b.ItemSize
	return float64(b.Data[j]), float64(b.Data[j+1]), float64(b.Data[j+2])
}

// SetX writes the first component of element i.
func (b *AttributeBuffer) SetX(i int, x float64) {
	b.Data[i*b.ItemSize] = float32(x)
}

// SetXYZ writes the first three components of element i.
func (b *AttributeBuffer) SetXYZ(i int, x, y, z float64) {
	j := i * b.ItemSize
	b.Data[j] = float32(x)
	b.Data[j+1] = float32(y)
	b.Data[j+2] = float32(z)
}

// Clone returns a deep copy. The copy starts clean at version 0.
func (b *AttributeBuffer) Clone() *AttributeBuffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return &AttributeBuffer{Data: data, ItemSize: b.ItemSize}
}

// MarkDirty flags the buffer for upload at the next Flush.
func (b *AttributeBuffer) MarkDirty() {
	b.dirty = true
}

// Dirty reports whether the buffer has unflushed writes.
func (b *AttributeBuffer) Dirty() bool {
	return b.dirty
}

// Flush clears the dirty flag and bumps the version if the buffer was dirty.
// Returns true when there was something to upload.
func (b *AttributeBuffer) Flush() bool {
	if !b.dirty {
		return false
	}
	b.dirty = false
	b.version++
	return true
}

// Version increases by one on every effective Flush.
func (b *AttributeBuffer) Version() uint64 {
	return b.version
}
