package monitor

// DefaultHistorySize is the default number of data points to retain per metric.
const DefaultHistorySize = 60

// RingBuffer is a fixed-size circular buffer of samples, used as the rolling
// window behind every sparkline. A new buffer starts full of zeros so
// consumers always see Cap() values.
type RingBuffer struct {
	data  []uint64
	head  int
	count int
}

// NewRingBuffer creates a buffer pre-filled with size zero samples.
// Non-positive sizes fall back to DefaultHistorySize.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &RingBuffer{
		data:  make([]uint64, size),
		count: size,
	}
}

// Push appends a sample, evicting the oldest one when the buffer is full.
func (r *RingBuffer) Push(value uint64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Values returns the stored samples oldest first.
func (r *RingBuffer) Values() []uint64 {
	return r.last(r.count)
}

// Tail returns up to n of the newest samples, oldest first.
func (r *RingBuffer) Tail(n int) []uint64 {
	return r.last(n)
}

// Last returns the newest sample.
func (r *RingBuffer) Last() uint64 {
	if r.count == 0 {
		return 0
	}
	return r.data[(r.head-1+len(r.data))%len(r.data)]
}

// Len returns the number of stored samples.
func (r *RingBuffer) Len() int { return r.count }

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int { return len(r.data) }

func (r *RingBuffer) last(n int) []uint64 {
	if n <= 0 || r.count == 0 {
		return []uint64{}
	}
	if n > r.count {
		n = r.count
	}

	// head is the next write position, so the newest value sits at head-1.
	size := len(r.data)
	start := (r.head - n + size) % size

	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = r.data[(start+i)%size]
	}
	return out
}
